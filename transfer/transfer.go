package transfer

import (
	"context"
	"fmt"
	"slices"

	vision "github.com/cmaxcy/computer-vision"
)

// TransferModel is a pretrained base network topped with a new
// classification head. New freezes the base; Fit trains the head and then
// fine-tunes the tail of the base.
//
// A TransferModel is not safe for concurrent use.
type TransferModel struct {
	backend    Backend
	model      Model
	baseLayers []Layer
	head       []HeadLayer
	numClasses int
	logger     vision.Logger
}

// New attaches head atop base through backend and freezes every base layer.
// Returns ErrInvalidHead if head is empty, a layer has a non-positive width
// or a dropout outside [0, 1), or numClasses is below vision.MinClasses.
func New(backend Backend, base Model, head []HeadLayer, numClasses int, opts ...Option) (*TransferModel, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = nopLogger{}
	}

	if backend == nil || base == nil {
		return nil, fmt.Errorf("%w: backend and base model are required", ErrInvalidHead)
	}
	if err := validateHead(head); err != nil {
		return nil, err
	}
	if numClasses < vision.MinClasses {
		return nil, fmt.Errorf("%w: need at least %d classes, got %d", ErrInvalidHead, vision.MinClasses, numClasses)
	}

	baseLayers := base.Layers()
	for _, l := range baseLayers {
		l.SetTrainable(false)
	}

	model, err := backend.AttachHead(base, slices.Clone(head), numClasses)
	if err != nil {
		return nil, fmt.Errorf("attaching head: %w", err)
	}

	logger.Debug("transfer model ready",
		"base_layers", len(baseLayers), "head_layers", len(head), "classes", numClasses)

	return &TransferModel{
		backend:    backend,
		model:      model,
		baseLayers: baseLayers,
		head:       slices.Clone(head),
		numClasses: numClasses,
		logger:     logger,
	}, nil
}

func validateHead(head []HeadLayer) error {
	if len(head) == 0 {
		return fmt.Errorf("%w: head has no layers", ErrInvalidHead)
	}
	for i, h := range head {
		if h.Width < 1 {
			return fmt.Errorf("%w: layer %d width must be positive, got %d", ErrInvalidHead, i, h.Width)
		}
		if h.Dropout < 0 || h.Dropout >= 1 {
			return fmt.Errorf("%w: layer %d dropout must be in [0, 1), got %g", ErrInvalidHead, i, h.Dropout)
		}
	}
	return nil
}

// Model returns the combined backend model.
func (m *TransferModel) Model() Model { return m.model }

// Head returns a copy of the head description.
func (m *TransferModel) Head() []HeadLayer { return slices.Clone(m.head) }

// NumClasses returns the width of the softmax output.
func (m *TransferModel) NumClasses() int { return m.numClasses }

// FrozenBaseLayers returns how many base layers are currently not trainable.
func (m *TransferModel) FrozenBaseLayers() int {
	n := 0
	for _, l := range m.baseLayers {
		if !l.Trainable() {
			n++
		}
	}
	return n
}

// Fit trains on train in two phases. The transfer phase compiles with
// Optimizers[0] and runs Epochs[0] epochs with the base frozen. The
// fine-tune phase unfreezes the last UnfreezeLast base layers, recompiles
// with Optimizers[1] and runs Epochs[1] epochs.
//
// The context is checked before every epoch. On error the epochs completed
// so far are returned with it.
func (m *TransferModel) Fit(ctx context.Context, train *vision.ImageSet, cfg FitConfig) (History, error) {
	var history History

	if err := m.checkFit(train, cfg); err != nil {
		return history, err
	}

	trainSrc, err := m.backend.NewDataSource(train)
	if err != nil {
		return history, fmt.Errorf("preparing training data: %w", err)
	}
	var valSrc DataSource
	if cfg.Validation != nil {
		valSrc, err = m.backend.NewDataSource(cfg.Validation)
		if err != nil {
			return history, fmt.Errorf("preparing validation data: %w", err)
		}
	}

	phases := []struct {
		phase   Phase
		prepare func()
	}{
		{PhaseTransfer, m.freezeBase},
		{PhaseFineTune, func() { m.unfreezeLast(cfg.UnfreezeLast) }},
	}

	for i, p := range phases {
		epochs := cfg.Epochs[i]
		if epochs == 0 {
			m.logger.Debug("skipping phase", "phase", p.phase.String())
			continue
		}

		p.prepare()
		if err := m.model.Compile(cfg.Optimizers[i]); err != nil {
			return history, fmt.Errorf("compiling for %s phase: %w", p.phase, err)
		}
		m.logger.Info("starting phase",
			"phase", p.phase.String(),
			"optimizer", cfg.Optimizers[i].Name(),
			"epochs", epochs,
			"frozen_base_layers", m.FrozenBaseLayers(),
			"steps_per_epoch", trainSrc.Steps(),
		)

		for e := 1; e <= epochs; e++ {
			if err := ctx.Err(); err != nil {
				return history, err
			}

			metrics, err := m.model.TrainEpoch(ctx, trainSrc, valSrc)
			if err != nil {
				return history, fmt.Errorf("%s phase epoch %d: %w", p.phase, e, err)
			}
			metrics.Phase = p.phase
			metrics.Epoch = e
			history.Epochs = append(history.Epochs, metrics)

			m.logger.Debug("epoch complete",
				"phase", p.phase.String(), "epoch", e, "loss", metrics.Loss, "accuracy", metrics.Accuracy)
			if cfg.OnEpoch != nil {
				cfg.OnEpoch(metrics)
			}
		}
	}

	return history, nil
}

func (m *TransferModel) checkFit(train *vision.ImageSet, cfg FitConfig) error {
	if train == nil {
		return fmt.Errorf("%w: training set is required", ErrInvalidFitConfig)
	}
	for i, n := range cfg.Epochs {
		if n < 0 {
			return fmt.Errorf("%w: epochs[%d] must not be negative, got %d", ErrInvalidFitConfig, i, n)
		}
		if n > 0 && cfg.Optimizers[i] == nil {
			return fmt.Errorf("%w: optimizers[%d] is required for %d epochs", ErrInvalidFitConfig, i, n)
		}
	}
	if cfg.UnfreezeLast < 0 {
		return fmt.Errorf("%w: unfreeze count must not be negative, got %d", ErrInvalidFitConfig, cfg.UnfreezeLast)
	}

	if train.NumClasses() != m.numClasses {
		return fmt.Errorf("%w: model has %d classes, training set %s has %d",
			ErrClassMismatch, m.numClasses, train.Root(), train.NumClasses())
	}
	if cfg.Validation != nil && !slices.Equal(train.ClassNames(), cfg.Validation.ClassNames()) {
		return fmt.Errorf("%w: validation set %s classes %v differ from training set %v",
			ErrClassMismatch, cfg.Validation.Root(), cfg.Validation.ClassNames(), train.ClassNames())
	}
	return nil
}

func (m *TransferModel) freezeBase() {
	for _, l := range m.baseLayers {
		l.SetTrainable(false)
	}
}

// unfreezeLast makes the trailing n base layers trainable and the rest
// frozen. n is clamped to the layer count.
func (m *TransferModel) unfreezeLast(n int) {
	cut := len(m.baseLayers) - n
	if cut < 0 {
		cut = 0
	}
	for i, l := range m.baseLayers {
		l.SetTrainable(i >= cut)
	}
}
