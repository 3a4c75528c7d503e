package routing

import (
	"slices"
	"testing"
)

func TestBusLifecycle(t *testing.T) {
	t.Parallel()

	m := NewBusManager(testOptions()...)

	b := m.CreateBus("Drums", "#f80")
	if b.ID != "bus-1" || b.VolumeDB != 0 || b.Pan != 0 || b.Muted || b.Soloed {
		t.Fatalf("new bus = %+v", b)
	}

	if !m.RenameBus(b.ID, "Kit") || !m.SetBusColor(b.ID, "#000") {
		t.Fatal("rename or recolor failed")
	}

	m.SetBusVolume(b.ID, 40)
	m.SetBusPan(b.ID, -3)

	got, _ := m.Bus(b.ID)
	if got.Name != "Kit" || got.Color != "#000" || got.VolumeDB != MaxBusVolumeDB || got.Pan != -1 {
		t.Fatalf("bus = %+v", got)
	}

	if m.SetBusVolume("bus-9", 0) || m.SetMute("bus-9", true) {
		t.Fatal("setter on a missing bus reported success")
	}

	if !m.DeleteBus(b.ID) || m.DeleteBus(b.ID) {
		t.Fatal("DeleteBus results wrong")
	}

	if _, ok := m.Bus(b.ID); ok || len(m.Buses()) != 0 {
		t.Fatal("bus still present after delete")
	}
}

func TestBusMembershipExclusive(t *testing.T) {
	t.Parallel()

	m := NewBusManager(testOptions()...)
	a := m.CreateBus("A", "")
	b := m.CreateBus("B", "")

	if !m.AddTrackToBus(a.ID, "t1") || m.AddTrackToBus(a.ID, "t1") {
		t.Fatal("membership set semantics broken")
	}

	m.AddTrackToBus(a.ID, "t2")
	m.AddTrackToBus(b.ID, "t1")

	if got, _ := m.Bus(a.ID); !slices.Equal(got.Tracks, []string{"t2"}) {
		t.Fatalf("bus A tracks = %v", got.Tracks)
	}

	if got, ok := m.BusForTrack("t1"); !ok || got.ID != b.ID {
		t.Fatalf("BusForTrack(t1) = %+v, %v", got, ok)
	}

	if len(m.BusesForTrack("t1")) != 1 {
		t.Fatal("track belongs to more than one bus")
	}

	if !m.RemoveTrackFromBus(b.ID, "t1") || m.RemoveTrackFromBus(b.ID, "t1") {
		t.Fatal("RemoveTrackFromBus results wrong")
	}

	if m.AddTrackToBus("bus-9", "t1") {
		t.Fatal("added to a missing bus")
	}
}

func TestBusMembershipShared(t *testing.T) {
	t.Parallel()

	m := NewBusManager(testOptions(WithExclusiveBusMembership(false))...)
	a := m.CreateBus("A", "")
	b := m.CreateBus("B", "")

	m.AddTrackToBus(a.ID, "t1")
	m.AddTrackToBus(b.ID, "t1")

	if got := m.BusesForTrack("t1"); len(got) != 2 {
		t.Fatalf("BusesForTrack = %+v", got)
	}

	m.RemoveTrack("t1")

	if _, ok := m.BusForTrack("t1"); ok {
		t.Fatal("RemoveTrack left membership behind")
	}
}

func TestDeleteBusDropsMembership(t *testing.T) {
	t.Parallel()

	m := NewBusManager(testOptions()...)
	a := m.CreateBus("A", "")
	m.AddTrackToBus(a.ID, "t1")
	m.DeleteBus(a.ID)

	if _, ok := m.BusForTrack("t1"); ok {
		t.Fatal("track still assigned after bus deletion")
	}
}

func TestBusMuteSolo(t *testing.T) {
	t.Parallel()

	m := NewBusManager(testOptions()...)
	a := m.CreateBus("A", "")
	b := m.CreateBus("B", "")

	if !m.Audible(a.ID) || m.AnySolo() {
		t.Fatal("fresh bus not audible")
	}

	m.SetSolo(b.ID, true)

	if m.Audible(a.ID) || !m.Audible(b.ID) {
		t.Fatal("solo did not isolate bus B")
	}

	m.SetMute(b.ID, true)

	if m.Audible(b.ID) {
		t.Fatal("muted soloed bus is audible")
	}

	if got, _ := m.Bus(b.ID); got.Gain() != 0 {
		t.Fatalf("muted gain = %v", got.Gain())
	}

	if got, _ := m.Bus(a.ID); got.Gain() != 1 {
		t.Fatalf("0 dB gain = %v", got.Gain())
	}
}
