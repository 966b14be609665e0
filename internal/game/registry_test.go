package game

import (
	"testing"
)

func TestRegistryCreatesRoomsLazily(t *testing.T) {
	reg := NewRegistry(&fakeEmitter{}, Options{})

	room, p, err := reg.Join(" abcd ", "c1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if room.Code() != "ABCD" {
		t.Fatalf("code should normalize to ABCD, got %s", room.Code())
	}
	if !p.IsHost {
		t.Fatal("first joiner should be host")
	}
	if reg.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", reg.RoomCount())
	}

	again, _, err := reg.Join("ABCD", "c2", "Bob")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if again != room {
		t.Fatal("same code must resolve to the same room")
	}
	if reg.RoomCount() != 1 {
		t.Fatal("joining must not create a second room")
	}

	got, err := reg.Get("abcd")
	if err != nil || got != room {
		t.Fatalf("Get should find the room case-insensitively, got %v %v", got, err)
	}
}

func TestRegistryRejectsMalformedCodes(t *testing.T) {
	reg := NewRegistry(&fakeEmitter{}, Options{})
	for _, code := range []string{"", "abc", "abcde", "ab!d", "کلمه"} {
		if _, _, err := reg.Join(code, "c1", "Alice"); err != ErrInvalidRoomCode {
			t.Fatalf("code %q: expected ErrInvalidRoomCode, got %v", code, err)
		}
	}
	if reg.RoomCount() != 0 {
		t.Fatal("rejected joins must not create rooms")
	}
	if _, err := reg.Get("ZZZZ"); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRegistryDestroysEmptiedRooms(t *testing.T) {
	reg := NewRegistry(&fakeEmitter{}, Options{})
	reg.Join("ABCD", "c1", "Alice")
	reg.Join("ABCD", "c2", "Bob")

	reg.Leave("ABCD", "c1")
	if reg.RoomCount() != 1 {
		t.Fatal("room with players left must survive")
	}
	reg.Leave("ABCD", "c2")
	if reg.RoomCount() != 0 {
		t.Fatal("emptied room must be destroyed")
	}

	// leaving unknown rooms or connections is a no-op
	reg.Leave("ABCD", "c2")
	reg.Leave("nope", "c1")
}

// A join can race the last player's teardown: the room empties and closes
// itself before the registry half of the teardown has dropped it from the
// map. Such a join must get a fresh room, not resurrect the closed one.
func TestRegistryReplacesClosedRooms(t *testing.T) {
	reg := NewRegistry(&fakeEmitter{}, Options{})
	stale, _, err := reg.Join("ABCD", "c1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	// the room-level half of the teardown runs; the registry delete has not
	stale.Leave("c1")
	if _, err := stale.Join("c2", "Bob"); err != errRoomClosed {
		t.Fatalf("closed room must reject joins, got %v", err)
	}

	fresh, p, err := reg.Join("ABCD", "c2", "Bob")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if fresh == stale {
		t.Fatal("join must not resurrect a closed room")
	}
	if !p.IsHost {
		t.Fatal("first joiner of the replacement room should be host")
	}
	if reg.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", reg.RoomCount())
	}

	// the delayed registry teardown for the old room must not take the
	// replacement down with it
	reg.Leave("ABCD", "c1")
	got, err := reg.Get("ABCD")
	if err != nil || got != fresh {
		t.Fatalf("replacement room must stay resolvable, got %v %v", got, err)
	}
}
