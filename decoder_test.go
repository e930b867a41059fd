package saber

import (
	"strings"
	"testing"
	"time"

	"github.com/TeamNorCal/saber/model"
)

func TestDecoderPacing(t *testing.T) {
	assets := &countingAssets{MemAssets: NewMemAssets()}
	assets.Add("a.bin", frameBytes(4, model.Red, model.White, model.Red))

	dec, err := openDecoder(assets, "a.bin", 4, 25*time.Millisecond, 0)
	if err != nil {
		t.Fatal(err.Error())
	}

	if active, fresh := dec.advance(epoch); !active || !fresh {
		t.Fatalf("the first advance must read a frame, active %t fresh %t", active, fresh)
	}
	consumed := assets.bytesRead()
	if consumed != 12 {
		t.Fatalf("expected one frame of 12 bytes read, got %d", consumed)
	}

	// Stalled or slow clocks must never touch the source
	for _, at := range []time.Duration{0, time.Millisecond, 24 * time.Millisecond} {
		if active, fresh := dec.advance(epoch.Add(at)); !active || fresh {
			t.Fatalf("advance at %v should be active without a frame", at)
		}
		if assets.bytesRead() != consumed {
			t.Fatalf("advance at %v consumed bytes before the interval elapsed", at)
		}
	}

	if _, fresh := dec.advance(epoch.Add(25 * time.Millisecond)); !fresh {
		t.Fatal("a frame is due once the interval elapsed")
	}
	if r, g, b := dec.pixel(3); r != 255 || g != 255 || b != 255 {
		t.Fatalf("second frame not decoded, got %d %d %d", r, g, b)
	}
}

func TestDecoderShortReadEndsStream(t *testing.T) {
	assets := NewMemAssets()
	data := frameBytes(2, model.Red, model.White)
	data = append(data, 9, 9)
	assets.Add("short.bin", data)

	dec, err := openDecoder(assets, "short.bin", 2, 0, 0)
	if err != nil {
		t.Fatal(err.Error())
	}

	for i := 0; i < 2; i++ {
		if active, fresh := dec.advance(epoch); !active || !fresh {
			t.Fatalf("frame %d should have been read", i)
		}
	}
	if active, fresh := dec.advance(epoch); active || fresh {
		t.Fatal("a short read must end the stream")
	}
	if !dec.done || dec.src != nil {
		t.Fatal("the decoder must be done with its source released")
	}
	if dec.err != nil {
		t.Fatalf("end of stream is not an error, got %s", dec.err.Error())
	}

	// Done decoders are inert
	if active, _ := dec.advance(epoch.Add(time.Hour)); active {
		t.Fatal("advance after done must stay inactive")
	}

	if err := dec.reset(); err != nil {
		t.Fatal(err.Error())
	}
	if assets.Opens("short.bin") != 2 {
		t.Fatalf("reset after release must reopen the asset, opens %d", assets.Opens("short.bin"))
	}
	for i, v := range dec.scratch {
		if v != 0 {
			t.Fatalf("scratch byte %d not zeroed by reset", i)
		}
	}
	if active, fresh := dec.advance(epoch); !active || !fresh {
		t.Fatal("a reset decoder reads immediately")
	}
	if r, g, b := dec.pixel(0); r != 255 || g != 0 || b != 0 {
		t.Fatalf("reset must restart at the first frame, got %d %d %d", r, g, b)
	}
}

func TestDecoderFrameSkip(t *testing.T) {
	assets := NewMemAssets()
	colors := []model.Color{{R: 1}, {R: 2}, {R: 3}, {R: 4}, {R: 5}}
	assets.Add("skip.bin", frameBytes(1, colors...))

	dec, err := openDecoder(assets, "skip.bin", 1, 0, 1)
	if err != nil {
		t.Fatal(err.Error())
	}

	seen := []uint8{}
	for {
		active, fresh := dec.advance(epoch)
		if fresh {
			r, _, _ := dec.pixel(0)
			seen = append(seen, r)
		}
		if !active {
			break
		}
	}
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 3 || seen[2] != 5 {
		t.Fatalf("expected every other frame, got %v", seen)
	}
}

func TestDecoderReadFailure(t *testing.T) {
	dec, err := openDecoder(failingAssets{}, "broken.bin", 3, 0, 0)
	if err != nil {
		t.Fatal(err.Error())
	}
	if active, _ := dec.advance(epoch); active {
		t.Fatal("a failed read ends the stream")
	}
	if dec.err == nil {
		t.Fatal("a failed read must be recorded")
	}
	if !strings.Contains(dec.err.Error(), kindAssetUnavailable) {
		t.Fatalf("unexpected error %s", dec.err.Error())
	}
}

func TestDecoderMissingAsset(t *testing.T) {
	if _, err := openDecoder(NewMemAssets(), "nope.bin", 3, 0, 0); err == nil {
		t.Fatal("opening a missing asset must fail")
	}
	if _, err := openDecoder(NewMemAssets(), "nope.bin", 0, 0, 0); err == nil {
		t.Fatal("a zero width must be refused")
	}
}
