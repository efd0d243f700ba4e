package vision

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestInfoAccessors(t *testing.T) {
	info := Info{
		ClassCount: 2,
		ImageCount: 5,
		Classes: []ClassInfo{
			{Name: "beagle", Images: 3},
			{Name: "pug", Images: 2},
		},
	}

	classes, images := info.Counts()
	if classes != 2 || images != 5 {
		t.Errorf("Counts() = (%d, %d), want (2, 5)", classes, images)
	}

	names := info.ClassNames()
	if len(names) != 2 || names[0] != "beagle" || names[1] != "pug" {
		t.Errorf("ClassNames() = %v", names)
	}
}

func TestClassInfoFilesNotSerialized(t *testing.T) {
	data, err := json.Marshal(ClassInfo{Name: "pug", Images: 1, Files: []string{"a.jpg"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got := string(data); got != `{"name":"pug","images":1}` {
		t.Errorf("Marshal() = %s", got)
	}
}

func TestPartitionResultTotals(t *testing.T) {
	r := PartitionResult{Classes: []ClassSplit{
		{Name: "a", Train: 8, Validation: 2},
		{Name: "b", Train: 0, Validation: 1},
		{Name: "c", Train: 5, Validation: 2},
	}}

	if got := r.TrainImages(); got != 13 {
		t.Errorf("TrainImages() = %d, want 13", got)
	}
	if got := r.ValidationImages(); got != 5 {
		t.Errorf("ValidationImages() = %d, want 5", got)
	}
	if got := (PartitionResult{}).TrainImages(); got != 0 {
		t.Errorf("empty TrainImages() = %d, want 0", got)
	}
}

func TestAugmentationValidate(t *testing.T) {
	tests := []struct {
		name    string
		aug     Augmentation
		wantErr bool
	}{
		{"zero value", Augmentation{}, false},
		{"typical training", Augmentation{Rescale: 1.0 / 255, ShearRange: .4, ZoomRange: .4, HorizontalFlip: true, RotationRange: .4, ChannelShiftRange: .4}, false},
		{"negative rescale", Augmentation{Rescale: -1}, true},
		{"negative shear", Augmentation{ShearRange: -0.1}, true},
		{"negative zoom", Augmentation{ZoomRange: -0.1}, true},
		{"negative rotation", Augmentation{RotationRange: -1}, true},
		{"negative channel shift", Augmentation{ChannelShiftRange: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.aug.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestAugmentationScale(t *testing.T) {
	if got := (Augmentation{}).Scale(); got != 1 {
		t.Errorf("zero Rescale Scale() = %v, want 1", got)
	}
	if got := (Augmentation{Rescale: 0.5}).Scale(); got != 0.5 {
		t.Errorf("Scale() = %v, want 0.5", got)
	}
}

func TestResizeDimsString(t *testing.T) {
	if got := DefaultResizeDims.String(); got != "256x256" {
		t.Errorf("String() = %q, want %q", got, "256x256")
	}
	if got := (ResizeDims{Width: 500, Height: 375}).String(); got != "500x375" {
		t.Errorf("String() = %q, want %q", got, "500x375")
	}
}
