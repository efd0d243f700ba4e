package transfer

import (
	"context"

	vision "github.com/cmaxcy/computer-vision"
)

// Layer is one trainable unit of a backend model.
type Layer interface {
	Name() string
	Trainable() bool
	SetTrainable(trainable bool)
}

// Optimizer is an opaque backend optimizer, such as Adam with a learning rate.
type Optimizer interface {
	Name() string
}

// DataSource streams batches of a validated image set to the backend.
type DataSource interface {
	// Steps returns the number of batches in one epoch.
	Steps() int
}

// Model is a backend network. Layers are returned input to output.
type Model interface {
	Layers() []Layer

	// Compile prepares the model for training with opt. It is called again
	// whenever the set of trainable layers changes.
	Compile(opt Optimizer) error

	// TrainEpoch runs one pass over train and, if val is non-nil, evaluates
	// against val afterwards.
	TrainEpoch(ctx context.Context, train, val DataSource) (EpochMetrics, error)
}

// Backend adapts an external ML library. Everything numeric (loss,
// gradients, augmentation, decoding) happens behind it.
type Backend interface {
	// NewDataSource wraps set, honouring its augmentation, batch size and
	// resize target.
	NewDataSource(set *vision.ImageSet) (DataSource, error)

	// AttachHead returns a model that feeds base into the dense layers of
	// head followed by a softmax over numClasses.
	AttachHead(base Model, head []HeadLayer, numClasses int) (Model, error)
}

// HeadLayer describes one dense layer of the classification head.
type HeadLayer struct {
	// Width is the number of units.
	Width int `json:"width"`

	// Dropout is the dropout rate applied after the layer, in [0, 1).
	Dropout float64 `json:"dropout"`
}
