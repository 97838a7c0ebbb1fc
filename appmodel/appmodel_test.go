package appmodel

import (
	"testing"

	"github.com/cosmic-utils/camera-sub001/camerabackend"
	"github.com/cosmic-utils/camera-sub001/filter"
	"github.com/cosmic-utils/camera-sub001/preview"
)

func TestNewHasIdentityFilterAndCoverFit(t *testing.T) {
	m := New()
	if m.FilterMode() != filter.Identity {
		t.Fatalf("expected the default filter to be Identity")
	}
	if m.Preview().ContentFit != preview.ContentFitCover {
		t.Fatalf("expected the default content fit to be Cover")
	}
}

func TestSetDeviceAndFormatRoundTrip(t *testing.T) {
	m := New()
	dev := camerabackend.Device{ID: "cam0"}
	format := camerabackend.Format{Width: 1920, Height: 1080}
	m.SetDevice(dev)
	m.SetFormat(format)
	if m.Device() != dev {
		t.Fatalf("expected Device() to return the set device")
	}
	if m.Format() != format {
		t.Fatalf("expected Format() to return the set format")
	}
}

func TestTransitionIsSharedByPointer(t *testing.T) {
	m := New()
	m.Transition().Start()
	if !m.Transition().InTransition() {
		t.Fatalf("expected the transition state mutation to be visible through repeated Transition() calls")
	}
}
