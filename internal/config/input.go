package config

// Input is the top-level training-input document.
type Input struct {
	Model        Model        `yaml:"model" json:"model"`
	LearningRate LearningRate `yaml:"learning_rate" json:"learning_rate"`
	Loss         Loss         `yaml:"loss" json:"loss"`
	Training     Training     `yaml:"training" json:"training"`
}

// Model describes the chemical species, the descriptor, the fitting
// network, and the optional spin configuration.
type Model struct {
	TypeMap    []string   `yaml:"type_map" json:"type_map"`
	Descriptor Descriptor `yaml:"descriptor" json:"descriptor"`
	FittingNet FittingNet `yaml:"fitting_net" json:"fitting_net"`
	Spin       *Spin      `yaml:"spin,omitempty" json:"spin,omitempty"`
}

// Descriptor configures the local-environment descriptor.
type Descriptor struct {
	Type       string  `yaml:"type" json:"type"`
	Sel        []int   `yaml:"sel" json:"sel"`
	RcutSmth   float64 `yaml:"rcut_smth" json:"rcut_smth"`
	Rcut       float64 `yaml:"rcut" json:"rcut"`
	Neuron     []int   `yaml:"neuron" json:"neuron"`
	AxisNeuron int     `yaml:"axis_neuron,omitempty" json:"axis_neuron,omitempty"`
	ResnetDT   bool    `yaml:"resnet_dt,omitempty" json:"resnet_dt,omitempty"`
	Seed       *int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// FittingNet configures the network mapping descriptor output to energy.
type FittingNet struct {
	Neuron   []int  `yaml:"neuron" json:"neuron"`
	ResnetDT bool   `yaml:"resnet_dt,omitempty" json:"resnet_dt,omitempty"`
	Seed     *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Spin configures auxiliary magnetic degrees of freedom modeled via
// virtual atoms. All three arrays carry one entry per declared species.
type Spin struct {
	UseSpin    []bool    `yaml:"use_spin" json:"use_spin"`
	VirtualLen []float64 `yaml:"virtual_len" json:"virtual_len"`
	SpinNorm   []float64 `yaml:"spin_norm" json:"spin_norm"`
}

// LearningRate configures the learning-rate schedule.
type LearningRate struct {
	Type       string  `yaml:"type" json:"type"`
	StartLR    float64 `yaml:"start_lr" json:"start_lr"`
	StopLR     float64 `yaml:"stop_lr" json:"stop_lr"`
	DecaySteps int     `yaml:"decay_steps" json:"decay_steps"`
}

// Loss configures the loss function. Each term carries a (start, limit)
// preference pair defining its weight trajectory over training.
type Loss struct {
	Type string `yaml:"type" json:"type"`

	StartPrefE float64 `yaml:"start_pref_e" json:"start_pref_e"`
	LimitPrefE float64 `yaml:"limit_pref_e" json:"limit_pref_e"`

	// Plain energy loss: total force term.
	StartPrefF *float64 `yaml:"start_pref_f,omitempty" json:"start_pref_f,omitempty"`
	LimitPrefF *float64 `yaml:"limit_pref_f,omitempty" json:"limit_pref_f,omitempty"`

	// Spin loss: real-atom force term.
	StartPrefFR *float64 `yaml:"start_pref_fr,omitempty" json:"start_pref_fr,omitempty"`
	LimitPrefFR *float64 `yaml:"limit_pref_fr,omitempty" json:"limit_pref_fr,omitempty"`

	// Spin loss: magnetic force term on virtual atoms.
	StartPrefFM *float64 `yaml:"start_pref_fm,omitempty" json:"start_pref_fm,omitempty"`
	LimitPrefFM *float64 `yaml:"limit_pref_fm,omitempty" json:"limit_pref_fm,omitempty"`

	StartPrefV float64 `yaml:"start_pref_v,omitempty" json:"start_pref_v,omitempty"`
	LimitPrefV float64 `yaml:"limit_pref_v,omitempty" json:"limit_pref_v,omitempty"`

	// Optional atom-energy term.
	StartPrefAE *float64 `yaml:"start_pref_ae,omitempty" json:"start_pref_ae,omitempty"`
	LimitPrefAE *float64 `yaml:"limit_pref_ae,omitempty" json:"limit_pref_ae,omitempty"`
}

// Training configures the data pipeline and optimization loop cadence.
type Training struct {
	TrainingData   DataSection  `yaml:"training_data" json:"training_data"`
	ValidationData *DataSection `yaml:"validation_data,omitempty" json:"validation_data,omitempty"`
	NumbSteps      int          `yaml:"numb_steps" json:"numb_steps"`
	Seed           *int64       `yaml:"seed,omitempty" json:"seed,omitempty"`
	DispFile       string       `yaml:"disp_file,omitempty" json:"disp_file,omitempty"`
	DispFreq       int          `yaml:"disp_freq,omitempty" json:"disp_freq,omitempty"`
	SaveFreq       int          `yaml:"save_freq,omitempty" json:"save_freq,omitempty"`
	SaveCkpt       string       `yaml:"save_ckpt,omitempty" json:"save_ckpt,omitempty"`
	DispTraining   *bool        `yaml:"disp_training,omitempty" json:"disp_training,omitempty"`
	TimeTraining   *bool        `yaml:"time_training,omitempty" json:"time_training,omitempty"`
	Profiling      *bool        `yaml:"profiling,omitempty" json:"profiling,omitempty"`
	ProfilingFile  string       `yaml:"profiling_file,omitempty" json:"profiling_file,omitempty"`
}

// DataSection names a set of labeled data systems and the batch size
// used to draw frames from them.
type DataSection struct {
	Systems   []string  `yaml:"systems" json:"systems"`
	SetPrefix string    `yaml:"set_prefix,omitempty" json:"set_prefix,omitempty"`
	BatchSize BatchSize `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	SysProb   []float64 `yaml:"sys_probs,omitempty" json:"sys_probs,omitempty"`
	AutoProb  string    `yaml:"auto_prob,omitempty" json:"auto_prob,omitempty"`
}

// NumSpecies returns the number of declared chemical species.
func (m Model) NumSpecies() int {
	return len(m.TypeMap)
}

// HasSpin reports whether any species carries a spin degree of freedom.
func (m Model) HasSpin() bool {
	if m.Spin == nil {
		return false
	}
	for _, u := range m.Spin.UseSpin {
		if u {
			return true
		}
	}
	return false
}
