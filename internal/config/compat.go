package config

import (
	"fmt"
	"math"

	"github.com/polarmd/dpinput/internal/log"
)

// InputVersion identifies the generation of an input document.
type InputVersion string

const (
	// VersionV0 is the flat pre-1.0 layout without a model section.
	VersionV0 InputVersion = "v0"
	// VersionV1 nests model/learning_rate/loss/training but keeps data
	// settings directly under training.
	VersionV1 InputVersion = "v1"
	// VersionCurrent groups data settings under training_data.
	VersionCurrent InputVersion = "v2"
)

// Conversion records one migration applied to a document.
type Conversion struct {
	From InputVersion
	To   InputVersion
	Note string
}

// DetectVersion classifies a raw document by its shape.
func DetectVersion(raw map[string]any) InputVersion {
	if _, ok := raw["model"]; !ok {
		return VersionV0
	}
	if tr, ok := raw["training"].(map[string]any); ok {
		if _, ok := tr["systems"]; ok {
			return VersionV1
		}
	}
	return VersionCurrent
}

// Update upgrades a raw document to the current version, returning the
// upgraded document and the conversions applied. The input map is not
// reused afterwards; callers must treat the returned map as the document.
func Update(raw map[string]any) (map[string]any, []Conversion, error) {
	var applied []Conversion
	logger := log.WithComponent("compat")

	switch DetectVersion(raw) {
	case VersionV0:
		out, err := convertV0V1(raw)
		if err != nil {
			return nil, nil, err
		}
		applied = append(applied, Conversion{From: VersionV0, To: VersionV1, Note: "restructured flat input into model/learning_rate/loss/training sections"})
		raw = out
		fallthrough
	case VersionV1:
		if err := convertV1V2(raw); err != nil {
			return nil, nil, err
		}
		applied = append(applied, Conversion{From: VersionV1, To: VersionCurrent, Note: "moved data settings under training_data"})
	}

	if dropNumbTest(raw) {
		applied = append(applied, Conversion{
			From: VersionCurrent, To: VersionCurrent,
			Note: "dropped deprecated training.numb_test; use validation_data.batch_size",
		})
	}

	for _, c := range applied {
		logger.Warn().
			Str(log.FieldInputVersion, string(c.From)).
			Str("target_version", string(c.To)).
			Msg(c.Note)
	}
	return raw, applied, nil
}

// convertV0V1 rebuilds a flat v0 document into the sectioned v1 layout.
func convertV0V1(jdata map[string]any) (map[string]any, error) {
	smooth, _ := jdata["use_smooth"].(bool)

	out := map[string]any{}
	model := map[string]any{}
	if smooth {
		model["descriptor"] = v0SmoothDescriptor(jdata)
	} else {
		model["descriptor"] = v0LocalFrameDescriptor(jdata)
	}
	fitting, err := v0FittingNet(jdata)
	if err != nil {
		return nil, err
	}
	model["fitting_net"] = fitting
	out["model"] = model

	lr := map[string]any{"type": "exp"}
	jcopy(jdata, lr, "decay_steps", "decay_rate", "start_lr")
	out["learning_rate"] = lr

	loss := map[string]any{}
	jcopy(jdata, loss,
		"start_pref_e", "limit_pref_e",
		"start_pref_f", "limit_pref_f",
		"start_pref_v", "limit_pref_v",
		"start_pref_ae", "limit_pref_ae")
	out["loss"] = loss

	training := map[string]any{}
	if seed, ok := jdata["seed"]; ok {
		training["seed"] = seed
	}
	jcopy(jdata, training,
		"systems", "set_prefix", "batch_size",
		"disp_freq", "numb_test", "save_freq", "save_ckpt",
		"disp_training", "time_training", "profiling", "profiling_file")
	training["disp_file"] = DefaultDispFile
	if v, ok := jdata["disp_file"]; ok {
		training["disp_file"] = v
	}
	if v, ok := jdata["stop_batch"]; ok {
		training["stop_batch"] = v
	}
	out["training"] = training

	return out, nil
}

func v0SmoothDescriptor(jdata map[string]any) map[string]any {
	d := map[string]any{"type": "se_a"}
	if seed, ok := jdata["seed"]; ok {
		d["seed"] = seed
	}
	if sel, ok := jdata["sel_a"]; ok {
		d["sel"] = sel
	}
	jcopy(jdata, d, "rcut")
	if v, ok := jdata["rcut_smth"]; ok {
		d["rcut_smth"] = v
	} else if v, ok := jdata["rcut"]; ok {
		d["rcut_smth"] = v
	}
	if v, ok := jdata["filter_neuron"]; ok {
		d["neuron"] = v
	}
	if v, ok := firstOf(jdata, "axis_neuron", "n_axis_neuron"); ok {
		d["axis_neuron"] = v
	}
	d["resnet_dt"] = false
	if _, ok := jdata["resnet_dt"]; ok {
		if v, ok := jdata["filter_resnet_dt"]; ok {
			d["resnet_dt"] = v
		}
	}
	return d
}

func v0LocalFrameDescriptor(jdata map[string]any) map[string]any {
	d := map[string]any{"type": "loc_frame"}
	jcopy(jdata, d, "sel_a", "sel_r", "rcut", "axis_rule")
	return d
}

func v0FittingNet(jdata map[string]any) (map[string]any, error) {
	f := map[string]any{}
	if seed, ok := jdata["seed"]; ok {
		f["seed"] = seed
	}
	neuron, ok := firstOf(jdata, "fitting_neuron", "n_neuron")
	if !ok {
		return nil, fmt.Errorf("v0 input is missing fitting_neuron")
	}
	f["neuron"] = neuron
	f["resnet_dt"] = true
	if v, ok := jdata["resnet_dt"]; ok {
		f["resnet_dt"] = v
	}
	if v, ok := jdata["fitting_resnet_dt"]; ok {
		f["resnet_dt"] = v
	}
	return f, nil
}

// v1 data settings that move under training_data, including aliases.
var v1TrainingDataKeys = map[string]string{
	"systems":         "systems",
	"set_prefix":      "set_prefix",
	"batch_size":      "batch_size",
	"sys_prob":        "sys_probs",
	"sys_probs":       "sys_probs",
	"sys_weights":     "sys_probs",
	"auto_prob":       "auto_prob",
	"auto_prob_style": "auto_prob",
}

// convertV1V2 moves data settings under training_data and replaces the
// decay_rate parameterization with an explicit stop_lr.
func convertV1V2(jdata map[string]any) error {
	tr, ok := jdata["training"].(map[string]any)
	if !ok {
		return fmt.Errorf("training section missing or malformed")
	}

	if _, has := tr["systems"]; has {
		if _, both := tr["training_data"]; both {
			return ErrMixedVersions
		}

		dataCfg := map[string]any{}
		newTr := map[string]any{}
		for k, v := range tr {
			if canonical, move := v1TrainingDataKeys[k]; move {
				dataCfg[canonical] = v
				continue
			}
			newTr[k] = v
		}
		newTr["training_data"] = dataCfg

		// stop_batch is the v1 name for the total step count.
		if v, ok := newTr["stop_batch"]; ok {
			newTr["numb_steps"] = v
			delete(newTr, "stop_batch")
		}
		jdata["training"] = newTr
	}

	return removeDecayRate(jdata)
}

// removeDecayRate converts learning_rate.decay_rate into stop_lr using
// the total step count, preserving the decay trajectory:
//
//	stop_lr = exp(ln(decay_rate) * stop_steps/decay_steps) * start_lr
func removeDecayRate(jdata map[string]any) error {
	lr, ok := jdata["learning_rate"].(map[string]any)
	if !ok {
		return nil
	}
	rate, ok := asFloat(lr["decay_rate"])
	if !ok {
		return nil
	}
	startLR, ok := asFloat(lr["start_lr"])
	if !ok {
		return fmt.Errorf("learning_rate.start_lr required to convert decay_rate")
	}
	decaySteps, ok := asFloat(lr["decay_steps"])
	if !ok || decaySteps <= 0 {
		return fmt.Errorf("learning_rate.decay_steps required to convert decay_rate")
	}
	tr, _ := jdata["training"].(map[string]any)
	stopSteps, ok := asFloat(tr["numb_steps"])
	if !ok {
		if stopSteps, ok = asFloat(tr["stop_batch"]); !ok {
			return fmt.Errorf("training.numb_steps required to convert decay_rate")
		}
	}

	lr["stop_lr"] = math.Exp(math.Log(rate)*(stopSteps/decaySteps)) * startLR
	delete(lr, "decay_rate")
	return nil
}

// dropNumbTest removes the long-deprecated training.numb_test knob.
// It has taken no effect since the v2 data pipeline landed.
func dropNumbTest(jdata map[string]any) bool {
	tr, ok := jdata["training"].(map[string]any)
	if !ok {
		return false
	}
	if _, has := tr["numb_test"]; !has {
		return false
	}
	delete(tr, "numb_test")
	return true
}

func jcopy(src, dst map[string]any, keys ...string) {
	for _, k := range keys {
		if v, ok := src[k]; ok {
			dst[k] = v
		}
	}
}

func firstOf(src map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := src[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
