package config

// Default cadence and checkpoint values applied when the document leaves
// them unset. They follow the conventions of upstream training inputs.
const (
	DefaultDispFile   = "lcurve.out"
	DefaultDispFreq   = 100
	DefaultSaveFreq   = 1000
	DefaultSaveCkpt   = "model.ckpt"
	DefaultAxisNeuron = 4
)

// ApplyDefaults fills unset optional fields in place.
func ApplyDefaults(in *Input) {
	if in.Model.Descriptor.AxisNeuron == 0 {
		in.Model.Descriptor.AxisNeuron = DefaultAxisNeuron
	}
	if in.LearningRate.Type == "" {
		in.LearningRate.Type = "exp"
	}
	if in.Loss.Type == "" {
		in.Loss.Type = "ener"
	}
	if in.Training.DispFile == "" {
		in.Training.DispFile = DefaultDispFile
	}
	if in.Training.DispFreq == 0 {
		in.Training.DispFreq = DefaultDispFreq
	}
	if in.Training.SaveFreq == 0 {
		in.Training.SaveFreq = DefaultSaveFreq
	}
	if in.Training.SaveCkpt == "" {
		in.Training.SaveCkpt = DefaultSaveCkpt
	}
	if in.Training.TrainingData.BatchSize.IsZero() {
		in.Training.TrainingData.BatchSize = AutoBatchSize(0)
	}
	if in.Training.ValidationData != nil && in.Training.ValidationData.BatchSize.IsZero() {
		in.Training.ValidationData.BatchSize = AutoBatchSize(0)
	}
}
