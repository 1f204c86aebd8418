package proj

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func TestWgsToMerc(t *testing.T) {
	x, y := WgsToMerc(0, 0)
	if x != 0 || y != 0 {
		t.Fatalf("%v %v", x, y)
	}

	x, y = WgsToMerc(8, 53)
	if math.Abs(x-890555.9263461898) > 1e-6 || math.Abs(y-6982997.920389788) > 1e-6 {
		t.Fatalf("%v %v", x, y)
	}
}

func TestMercToWgs(t *testing.T) {
	long, lat := MercToWgs(0, 0)
	if long != 0 || lat != 0 {
		t.Fatalf("%v %v", long, lat)
	}
	long, lat = MercToWgs(890555.9263461898, 6982997.920389788)
	if math.Abs(long-8) > 1e-6 || math.Abs(lat-53) > 1e-6 {
		t.Fatalf("%v %v", long, lat)
	}
}

func TestWebMercatorRoundTrip(t *testing.T) {
	var p Projector = WebMercator{}
	for _, pt := range []orb.Point{
		{0, 0},
		{-71.1097, 42.3736},
		{139.6917, 35.6895},
		{-179.999, -85},
		{179.999, 85},
		{8, MaxLat - 1e-9},
	} {
		merc, err := p.ToPlanar(pt)
		if err != nil {
			t.Fatal(pt, err)
		}
		back := p.ToGeographic(merc)
		if math.Abs(back[0]-pt[0]) > 1e-9 || math.Abs(back[1]-pt[1]) > 1e-9 {
			t.Errorf("round trip of %v returned %v", pt, back)
		}
	}
}

func TestWebMercatorOutOfDomain(t *testing.T) {
	p := WebMercator{}
	for _, pt := range []orb.Point{
		{0, 90},
		{0, -90},
		{0, 86},
		{181, 0},
		{math.NaN(), 10},
		{10, math.Inf(1)},
	} {
		if _, err := p.ToPlanar(pt); errors.Cause(err) != ErrOutOfDomain {
			t.Errorf("expected ErrOutOfDomain for %v, got %v", pt, err)
		}
	}
}

func TestMaxLatIsPole(t *testing.T) {
	_, y := WgsToMerc(0, MaxLat)
	if math.Abs(y-pole) > 1e-3 {
		t.Fatalf("%v != %v", y, pole)
	}
}

func TestLineToPlanar(t *testing.T) {
	ls, err := LineToPlanar(WebMercator{}, orb.LineString{{0, 0}, {8, 53}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ls) != 2 || ls[0] != (orb.Point{0, 0}) || math.Abs(ls[1][0]-890555.9263461898) > 1e-6 {
		t.Fatal(ls)
	}

	_, err = LineToPlanar(WebMercator{}, orb.LineString{{0, 0}, {0, 89}})
	if errors.Cause(err) != ErrOutOfDomain {
		t.Fatal(err)
	}
}
