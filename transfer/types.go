package transfer

import vision "github.com/cmaxcy/computer-vision"

// Phase identifies a stage of Fit.
type Phase int

const (
	// PhaseTransfer trains only the head while the base is frozen.
	PhaseTransfer Phase = 1

	// PhaseFineTune trains the head and the unfrozen tail of the base.
	PhaseFineTune Phase = 2
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseTransfer:
		return "transfer"
	case PhaseFineTune:
		return "fine-tune"
	default:
		return "unknown"
	}
}

// EpochMetrics reports one training epoch. The backend fills the loss and
// accuracy fields; Fit stamps Phase and Epoch.
type EpochMetrics struct {
	Phase Phase `json:"phase"`

	// Epoch counts from 1 within its phase.
	Epoch int `json:"epoch"`

	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`

	// Validated is true when the Val fields were computed.
	Validated   bool    `json:"validated"`
	ValLoss     float64 `json:"val_loss,omitempty"`
	ValAccuracy float64 `json:"val_accuracy,omitempty"`
}

// History holds every completed epoch in order.
type History struct {
	Epochs []EpochMetrics `json:"epochs"`
}

// Phase returns the epochs completed in phase p.
func (h History) Phase(p Phase) []EpochMetrics {
	var out []EpochMetrics
	for _, e := range h.Epochs {
		if e.Phase == p {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent epoch. The second result is false when no
// epoch has completed.
func (h History) Last() (EpochMetrics, bool) {
	if len(h.Epochs) == 0 {
		return EpochMetrics{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}

// FitConfig controls the two training phases.
type FitConfig struct {
	// Optimizers are used for the transfer and fine-tune phases in order.
	// An optimizer may be nil only when its phase runs zero epochs.
	Optimizers [2]Optimizer

	// Epochs is the number of epochs for each phase. Zero skips a phase.
	Epochs [2]int

	// UnfreezeLast is the number of trailing base layers trained during
	// fine-tuning. Values above the layer count unfreeze the whole base.
	UnfreezeLast int

	// Validation, if set, is evaluated after every epoch. It must have the
	// same class names as the training set.
	Validation *vision.ImageSet

	// OnEpoch, if set, is called after every completed epoch.
	OnEpoch func(EpochMetrics)
}
