package consolelog

// Options is the per-test configuration passed to the auditor.
// Nil fail flags are "not provided" and fall back to the auditor defaults.
type Options struct {
	FailOnWarning *bool    `mapstructure:"fail_on_warning" json:"fail_on_warning,omitempty"`
	FailOnError   *bool    `mapstructure:"fail_on_error" json:"fail_on_error,omitempty"`
	Exclude       []string `mapstructure:"exclude" json:"exclude,omitempty"`
}

// Policy is the effective fail policy of a single audit.
type Policy struct {
	FailOnWarning bool
	FailOnError   bool
}

// DefaultPolicy fails on errors only.
func DefaultPolicy() Policy {
	return Policy{
		FailOnWarning: false,
		FailOnError:   true,
	}
}

// Bool returns a pointer to b, handy for filling Options.
func Bool(b bool) *bool {
	return &b
}

// merge resolves the policy from the provided options. In legacy mode a provided
// false is treated like an absent value.
func merge(o *Options, def Policy, legacy bool) Policy {
	if o == nil {
		return def
	}

	return Policy{
		FailOnWarning: pick(o.FailOnWarning, def.FailOnWarning, legacy),
		FailOnError:   pick(o.FailOnError, def.FailOnError, legacy),
	}
}

func pick(v *bool, def bool, legacy bool) bool {
	if v == nil {
		return def
	}
	if legacy {
		return *v || def
	}
	return *v
}
