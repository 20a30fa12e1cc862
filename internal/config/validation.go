package config

import (
	"fmt"

	"github.com/polarmd/dpinput/internal/validate"
)

// Supported enum values. Registering a new descriptor, loss, or schedule
// type requires extending the corresponding component, so the allowed
// lists live here rather than being open-ended.
var (
	descriptorTypes   = []string{"se_e2_a", "se_a"}
	lossTypes         = []string{"ener", "ener_spin"}
	learningRateTypes = []string{"exp"}
)

// Validate checks an input document against the schema invariants:
// species-indexed arrays must match the type map length, cutoffs must be
// ordered, rates positive, preferences non-negative, and the training
// loop cadence sane. All violations are accumulated and reported together.
func Validate(in Input) error {
	v := validate.New()

	validateModel(v, in.Model)
	validateLearningRate(v, in.LearningRate)
	validateLoss(v, in.Loss, in.Model.HasSpin())
	validateTraining(v, in.Training)

	return v.Err()
}

func validateModel(v *validate.Validator, m Model) {
	nsp := m.NumSpecies()
	if nsp == 0 {
		v.AddError("model.type_map", "at least one species must be declared", m.TypeMap)
		return
	}
	for i, name := range m.TypeMap {
		if name == "" {
			v.AddError(fmt.Sprintf("model.type_map[%d]", i), "species name cannot be empty", name)
		}
	}

	d := m.Descriptor
	v.OneOf("model.descriptor.type", d.Type, descriptorTypes)
	v.Length("model.descriptor.sel", len(d.Sel), nsp)
	v.PositiveInts("model.descriptor.sel", d.Sel)
	v.Positive("model.descriptor.rcut", d.Rcut)
	v.NonNegative("model.descriptor.rcut_smth", d.RcutSmth)
	if d.RcutSmth > d.Rcut {
		v.AddError("model.descriptor.rcut_smth",
			fmt.Sprintf("smoothing onset %g must not exceed cutoff %g", d.RcutSmth, d.Rcut),
			d.RcutSmth)
	}
	if len(d.Neuron) == 0 {
		v.AddError("model.descriptor.neuron", "embedding network needs at least one layer", d.Neuron)
	}
	v.PositiveInts("model.descriptor.neuron", d.Neuron)
	v.Min("model.descriptor.axis_neuron", d.AxisNeuron, 1)

	if len(m.FittingNet.Neuron) == 0 {
		v.AddError("model.fitting_net.neuron", "fitting network needs at least one layer", m.FittingNet.Neuron)
	}
	v.PositiveInts("model.fitting_net.neuron", m.FittingNet.Neuron)

	if m.Spin != nil {
		validateSpin(v, m.Spin, nsp)
	}
}

func validateSpin(v *validate.Validator, s *Spin, nsp int) {
	v.Length("model.spin.use_spin", len(s.UseSpin), nsp)
	v.Length("model.spin.virtual_len", len(s.VirtualLen), nsp)
	v.Length("model.spin.spin_norm", len(s.SpinNorm), nsp)

	// Displacement and normalization only matter for spin species, but a
	// declared value must still be physical.
	for i, u := range s.UseSpin {
		if !u {
			continue
		}
		if i < len(s.VirtualLen) && s.VirtualLen[i] <= 0 {
			v.AddError(fmt.Sprintf("model.spin.virtual_len[%d]", i),
				fmt.Sprintf("virtual atom displacement must be > 0 for spin species, got %g", s.VirtualLen[i]),
				s.VirtualLen[i])
		}
		if i < len(s.SpinNorm) && s.SpinNorm[i] <= 0 {
			v.AddError(fmt.Sprintf("model.spin.spin_norm[%d]", i),
				fmt.Sprintf("spin normalization must be > 0 for spin species, got %g", s.SpinNorm[i]),
				s.SpinNorm[i])
		}
	}
}

func validateLearningRate(v *validate.Validator, lr LearningRate) {
	v.OneOf("learning_rate.type", lr.Type, learningRateTypes)
	v.Positive("learning_rate.start_lr", lr.StartLR)
	v.Positive("learning_rate.stop_lr", lr.StopLR)
	if lr.StopLR > lr.StartLR {
		v.AddError("learning_rate.stop_lr",
			fmt.Sprintf("final rate %g must not exceed initial rate %g", lr.StopLR, lr.StartLR),
			lr.StopLR)
	}
	v.Min("learning_rate.decay_steps", lr.DecaySteps, 1)
}

func validateLoss(v *validate.Validator, l Loss, hasSpin bool) {
	v.OneOf("loss.type", l.Type, lossTypes)

	v.NonNegative("loss.start_pref_e", l.StartPrefE)
	v.NonNegative("loss.limit_pref_e", l.LimitPrefE)
	v.NonNegative("loss.start_pref_v", l.StartPrefV)
	v.NonNegative("loss.limit_pref_v", l.LimitPrefV)

	pair := func(field string, start, limit *float64, required bool) {
		if start == nil && limit == nil {
			if required {
				v.AddError("loss."+field, "term is required for loss type "+l.Type, nil)
			}
			return
		}
		if start == nil || limit == nil {
			v.AddError("loss."+field, "start and limit preferences must be set together", nil)
			return
		}
		v.NonNegative("loss.start_pref_"+field, *start)
		v.NonNegative("loss.limit_pref_"+field, *limit)
	}

	switch l.Type {
	case "ener_spin":
		pair("fr", l.StartPrefFR, l.LimitPrefFR, true)
		pair("fm", l.StartPrefFM, l.LimitPrefFM, true)
		if l.StartPrefF != nil || l.LimitPrefF != nil {
			v.AddError("loss.start_pref_f", "plain force term not valid for spin loss, use fr/fm", nil)
		}
	case "ener":
		pair("f", l.StartPrefF, l.LimitPrefF, true)
		if l.StartPrefFR != nil || l.StartPrefFM != nil {
			v.AddError("loss.start_pref_fr", "spin force terms require loss type ener_spin", nil)
		}
	}

	pair("ae", l.StartPrefAE, l.LimitPrefAE, false)

	if hasSpin && l.Type != "ener_spin" {
		v.AddError("loss.type", "model declares spin species, loss type must be ener_spin", l.Type)
	}
}

func validateTraining(v *validate.Validator, t Training) {
	if len(t.TrainingData.Systems) == 0 {
		v.AddError("training.training_data.systems", "at least one data system is required", t.TrainingData.Systems)
	}
	for i, sys := range t.TrainingData.Systems {
		if sys == "" {
			v.AddError(fmt.Sprintf("training.training_data.systems[%d]", i), "system path cannot be empty", sys)
		}
	}
	validateBatchSize(v, "training.training_data.batch_size", t.TrainingData.BatchSize)

	if t.ValidationData != nil {
		if len(t.ValidationData.Systems) == 0 {
			v.AddError("training.validation_data.systems", "at least one data system is required", t.ValidationData.Systems)
		}
		validateBatchSize(v, "training.validation_data.batch_size", t.ValidationData.BatchSize)
	}

	v.Min("training.numb_steps", t.NumbSteps, 1)
	v.Min("training.disp_freq", t.DispFreq, 1)
	v.Min("training.save_freq", t.SaveFreq, 1)
	v.NotEmpty("training.save_ckpt", t.SaveCkpt)
}

func validateBatchSize(v *validate.Validator, field string, b BatchSize) {
	if b.Auto {
		v.Min(field, b.Ratio, 1)
		return
	}
	v.Min(field, b.Size, 1)
}
