package variant

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLimitsAreStrictlyIncreasing(t *testing.T) {
	for _, v := range []Variant{PinePhone, PinePhonePro} {
		limits := v.Limits()
		if len(limits) == 0 {
			t.Fatalf("%s: empty limit table", v)
		}
		for i := 1; i < len(limits); i++ {
			if limits[i] <= limits[i-1] {
				t.Errorf("%s: limits[%d]=%d not greater than limits[%d]=%d", v, i, limits[i], i-1, limits[i-1])
			}
		}
		if v.MinLimit() != limits[0] {
			t.Errorf("%s: MinLimit() = %d, want %d", v, v.MinLimit(), limits[0])
		}
		if v.MaxLimit() != limits[len(limits)-1] {
			t.Errorf("%s: MaxLimit() = %d, want %d", v, v.MaxLimit(), limits[len(limits)-1])
		}
	}
}

func TestLimitStep(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		up      bool
		cur     uint32
		want    uint32
	}{
		{name: "pinephone step up", variant: PinePhone, up: true, cur: 500000, want: 900000},
		{name: "pinephone step up at max clamps", variant: PinePhone, up: true, cur: 2000000, want: 2000000},
		{name: "pinephone step down", variant: PinePhone, up: false, cur: 900000, want: 500000},
		{name: "pinephone step down at min clamps", variant: PinePhone, up: false, cur: 500000, want: 500000},
		{name: "pinephone unknown value falls back", variant: PinePhone, up: true, cur: 123456, want: 1500000},
		{name: "pinephone-pro step up", variant: PinePhonePro, up: true, cur: 1000000, want: 1250000},
		{name: "pinephone-pro step down", variant: PinePhonePro, up: false, cur: 850000, want: 450000},
		{name: "pinephone-pro step up at max clamps", variant: PinePhonePro, up: true, cur: 2000000, want: 2000000},
		{name: "pinephone-pro unknown value falls back", variant: PinePhonePro, up: false, cur: 999999, want: 1000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.variant.LimitStep(tt.up, tt.cur); got != tt.want {
				t.Errorf("LimitStep(%t, %d) = %d, want %d", tt.up, tt.cur, got, tt.want)
			}
		})
	}
}

func TestLimitStepRoundTrip(t *testing.T) {
	for _, v := range []Variant{PinePhone, PinePhonePro} {
		limits := v.Limits()
		for i, l := range limits {
			up := v.LimitStep(true, l)
			down := v.LimitStep(false, l)
			if up < l {
				t.Errorf("%s: LimitStep(up, %d) = %d went down", v, l, up)
			}
			if down > l {
				t.Errorf("%s: LimitStep(down, %d) = %d went up", v, l, down)
			}
			// Interior entries step back to where they started.
			if i > 0 && i < len(limits)-1 {
				if got := v.LimitStep(true, down); got != l && down != l {
					t.Errorf("%s: step(up, step(down, %d)) = %d, want %d", v, l, got, l)
				}
				if got := v.LimitStep(false, up); got != l && up != l {
					t.Errorf("%s: step(down, step(up, %d)) = %d, want %d", v, l, got, l)
				}
			}
		}
	}
}

func TestCorrectMainCurrent(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		raw     int32
		limit   uint32
		want    int32
	}{
		{name: "pro reports signed current untouched", variant: PinePhonePro, raw: -350000, limit: 2000000, want: -350000},
		{name: "pinephone magnitude below threshold kept", variant: PinePhone, raw: 2400000, limit: 2000000, want: 2400000},
		{name: "pinephone magnitude above threshold complemented", variant: PinePhone, raw: 2600000, limit: 2000000, want: -2600001},
		{name: "pinephone magnitude at threshold kept", variant: PinePhone, raw: 2500000, limit: 2000000, want: 2500000},
		{name: "pinephone small discharge reading kept", variant: PinePhone, raw: 400000, limit: 500000, want: 400000},
		{name: "pinephone wrapped reading at low limit", variant: PinePhone, raw: 700000, limit: 500000, want: -700001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.variant.CorrectMainCurrent(tt.raw, tt.limit); got != tt.want {
				t.Errorf("CorrectMainCurrent(%d, %d) = %d, want %d", tt.raw, tt.limit, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if v, err := Parse("pinephone"); err != nil || v != PinePhone {
		t.Errorf("Parse(pinephone) = %v, %v", v, err)
	}
	if v, err := Parse("pinephone-pro"); err != nil || v != PinePhonePro {
		t.Errorf("Parse(pinephone-pro) = %v, %v", v, err)
	}
	if _, err := Parse("librem5"); err == nil {
		t.Error("Parse(librem5) should fail")
	}
}

func TestDetect(t *testing.T) {
	orig := PowerSupplyDir
	defer func() { PowerSupplyDir = orig }()

	dir := t.TempDir()
	PowerSupplyDir = dir

	if _, err := Detect(); err == nil {
		t.Error("Detect() should fail with no known power supplies")
	}

	if err := os.Mkdir(filepath.Join(dir, "axp20x-usb"), 0755); err != nil {
		t.Fatal(err)
	}
	if v, err := Detect(); err != nil || v != PinePhone {
		t.Errorf("Detect() = %v, %v, want PinePhone", v, err)
	}

	if err := os.Mkdir(filepath.Join(dir, "rk818-usb"), 0755); err != nil {
		t.Fatal(err)
	}
	if v, err := Detect(); err != nil || v != PinePhonePro {
		t.Errorf("Detect() = %v, %v, want PinePhonePro", v, err)
	}
}
