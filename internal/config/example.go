package config

func ptrFloat(v float64) *float64 { return &v }
func ptrInt64(v int64) *int64     { return &v }

// ExampleInput returns a complete, valid spin training input for an
// antiferromagnetic NiO system. It is the document emitted by configgen
// and the seed for tests.
func ExampleInput() Input {
	in := Input{
		Model: Model{
			TypeMap: []string{"Ni", "O"},
			Descriptor: Descriptor{
				Type:       "se_e2_a",
				Sel:        []int{120, 60},
				RcutSmth:   5.6,
				Rcut:       6.0,
				Neuron:     []int{25, 50, 100},
				AxisNeuron: 16,
				ResnetDT:   false,
				Seed:       ptrInt64(1),
			},
			FittingNet: FittingNet{
				Neuron:   []int{240, 240, 240},
				ResnetDT: true,
				Seed:     ptrInt64(1),
			},
			Spin: &Spin{
				UseSpin:    []bool{true, false},
				VirtualLen: []float64{0.4, 0.0},
				SpinNorm:   []float64{1.2737, 0.0},
			},
		},
		LearningRate: LearningRate{
			Type:       "exp",
			StartLR:    1e-3,
			StopLR:     3.51e-8,
			DecaySteps: 5000,
		},
		Loss: Loss{
			Type:        "ener_spin",
			StartPrefE:  0.02,
			LimitPrefE:  1,
			StartPrefFR: ptrFloat(1000),
			LimitPrefFR: ptrFloat(1),
			StartPrefFM: ptrFloat(10000),
			LimitPrefFM: ptrFloat(10),
			StartPrefV:  0,
			LimitPrefV:  0,
		},
		Training: Training{
			TrainingData: DataSection{
				Systems:   []string{"data/nio/train"},
				BatchSize: AutoBatchSize(0),
			},
			ValidationData: &DataSection{
				Systems:   []string{"data/nio/valid"},
				BatchSize: FixedBatchSize(1),
			},
			NumbSteps: 1000000,
			Seed:      ptrInt64(10),
			DispFile:  DefaultDispFile,
			DispFreq:  100,
			SaveFreq:  1000,
			SaveCkpt:  DefaultSaveCkpt,
		},
	}
	return in
}
