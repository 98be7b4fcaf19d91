package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus errors and warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.ExtraNonUSTerms = trimList(out.Filters.ExtraNonUSTerms)
	out.Filters.ExtraExclusionTerms = trimList(out.Filters.ExtraExclusionTerms)
	out.Sources.IMAP.SubjectAny = trimList(out.Sources.IMAP.SubjectAny)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Polling.CycleSeconds <= 0 {
		res.addErr("polling.cycle_seconds must be > 0")
	} else if out.Polling.CycleSeconds < 30 {
		res.addWarn("polling.cycle_seconds is very low (%d) and may hammer sources.", out.Polling.CycleSeconds)
	}

	if out.Policy.AutoSend {
		if out.SMTP.Host == "" || out.SMTP.From == "" {
			res.addErr("policy.auto_send requires smtp.host and smtp.from")
		}
		if out.Identity.Email == "" {
			res.addWarn("identity.email is empty; drafts will carry no reply address")
		}
	}

	if out.Drafter.BaseURL == "" || out.Drafter.Model == "" {
		res.addErr("drafter.base_url and drafter.model are required")
	}

	if out.Sources.IMAP.Enabled {
		if out.Sources.IMAP.Host == "" || out.Sources.IMAP.Username == "" {
			res.addErr("sources.imap enabled but missing host/username")
		}
	}
	if out.Sources.Pages.Enabled && out.Sources.Pages.Dir == "" {
		res.addErr("sources.pages enabled but missing dir")
	}
	if !out.Sources.IMAP.Enabled && !out.Sources.Pages.Enabled {
		res.addWarn("no post sources enabled; cycles will be no-ops")
	}

	if out.Limits.Workers <= 0 {
		res.addErr("limits.workers must be > 0")
	}
	if out.Limits.SendsPerMinute <= 0 {
		res.addErr("limits.sends_per_minute must be > 0")
	}

	return out, res
}
