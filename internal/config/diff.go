package config

import "reflect"

// ChangeSummary describes the result of comparing two service configs.
type ChangeSummary struct {
	ChangedFields   []string // List of field names that changed
	RestartRequired bool     // True if any changed field is NOT hot-reloadable
}

// hotReloadAllowlist defines the strictly permitted fields for runtime tuning.
var hotReloadAllowlist = map[string]struct{}{
	"LogLevel": {},
}

// DiffService compares two daemon configurations and reports which fields
// changed and whether applying the change requires a restart.
func DiffService(old, next ServiceConfig) ChangeSummary {
	summary := ChangeSummary{}

	oldVal := reflect.ValueOf(old)
	nextVal := reflect.ValueOf(next)
	t := oldVal.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if reflect.DeepEqual(oldVal.Field(i).Interface(), nextVal.Field(i).Interface()) {
			continue
		}
		summary.ChangedFields = append(summary.ChangedFields, f.Name)
		if _, allowed := hotReloadAllowlist[f.Name]; !allowed {
			summary.RestartRequired = true
		}
	}

	return summary
}
