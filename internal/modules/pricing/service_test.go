package pricing

import (
	"errors"
	"math"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"petlove/internal/observability"
)

func TestComputeFare_CarBands(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     int64
	}{
		{name: "fraction rounds into band 1", distance: 0.2, want: 500},
		{name: "band 1 max", distance: 4, want: 500},
		{name: "just past band 1 rounds up", distance: 4.01, want: 800},
		{name: "band 2 min", distance: 5, want: 800},
		{name: "band 2 max", distance: 10, want: 800},
		{name: "band 3 min", distance: 11, want: 1000},
		{name: "band 6 edge", distance: 30, want: 1700},
		{name: "band 7 min", distance: 31, want: 2100},
		{name: "band 12 min", distance: 56, want: 3700},
		{name: "last band max", distance: 70, want: 4300},
		{name: "first overflow block", distance: 71, want: 4500},
		{name: "first overflow block end", distance: 75, want: 4500},
		{name: "second overflow block", distance: 76, want: 4700},
		{name: "fractional overflow", distance: 75.3, want: 4700},
		{name: "long haul", distance: 120, want: 4300 + 10*200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFare(tt.distance, VehicleCar)
			if err != nil {
				t.Fatalf("ComputeFare() error = %v", err)
			}
			if got.Amount != tt.want {
				t.Errorf("ComputeFare(%v) = %d, want %d", tt.distance, got.Amount, tt.want)
			}
			if got.Currency != "PHP" {
				t.Errorf("Currency = %q, want PHP", got.Currency)
			}
		})
	}
}

func TestComputeFare_BandTableEdges(t *testing.T) {
	for _, b := range CarBands() {
		for _, km := range []int64{b.MinKm, b.MaxKm} {
			got, err := ComputeFare(float64(km), VehicleCar)
			if err != nil {
				t.Fatalf("ComputeFare(%d) error = %v", km, err)
			}
			if got.Amount != b.Fare {
				t.Errorf("ComputeFare(%d) = %d, want %d", km, got.Amount, b.Fare)
			}
		}
	}
}

func TestComputeFare_Motorcycle(t *testing.T) {
	tests := []struct {
		distance float64
		want     int64
	}{
		{1, 450},
		{14.2, 450},
		{15, 450},
		{15.1, 470},
		{16, 470},
		{30, 450 + 15*20},
	}
	for _, tt := range tests {
		got, err := ComputeFare(tt.distance, VehicleMotorcycle)
		if err != nil {
			t.Fatalf("ComputeFare(%v) error = %v", tt.distance, err)
		}
		if got.Amount != tt.want {
			t.Errorf("ComputeFare(%v, Motorcycle) = %d, want %d", tt.distance, got.Amount, tt.want)
		}
	}
}

func TestComputeFare_Monotonic(t *testing.T) {
	for _, v := range []VehicleType{VehicleCar, VehicleMotorcycle} {
		var prev int64
		for d := 0.5; d <= 150; d += 0.5 {
			got, err := ComputeFare(d, v)
			if err != nil {
				t.Fatalf("ComputeFare(%v, %s) error = %v", d, v, err)
			}
			if got.Amount < prev {
				t.Fatalf("%s fare dropped at %v km: %d < %d", v, d, got.Amount, prev)
			}
			prev = got.Amount
		}
		for _, d := range []float64{1_000, 10_000, 99_999.5, MaxDistanceKm} {
			got, err := ComputeFare(d, v)
			if err != nil {
				t.Fatalf("ComputeFare(%v, %s) error = %v", d, v, err)
			}
			if got.Amount < prev {
				t.Fatalf("%s fare dropped at %v km: %d < %d", v, d, got.Amount, prev)
			}
			prev = got.Amount
		}
	}
}

func TestComputeFare_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		vehicle  VehicleType
		want     error
	}{
		{"zero distance", 0, VehicleCar, ErrValidation},
		{"negative distance", -3, VehicleMotorcycle, ErrValidation},
		{"nan distance", math.NaN(), VehicleCar, ErrValidation},
		{"infinite distance", math.Inf(1), VehicleCar, ErrValidation},
		{"past max distance", MaxDistanceKm + 0.5, VehicleCar, ErrValidation},
		{"huge car distance", 1e19, VehicleCar, ErrValidation},
		{"huge motorcycle distance", 5e17, VehicleMotorcycle, ErrValidation},
		{"unknown vehicle", 10, VehicleType("Bus"), ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeFare(tt.distance, tt.vehicle)
			if !errors.Is(err, tt.want) {
				t.Errorf("ComputeFare() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComputeExtraCharge(t *testing.T) {
	tests := []struct {
		size  PetSize
		count int
		want  int64
	}{
		{PetLarge, 1, 0},
		{PetLarge, 2, 100},
		{PetLarge, 3, 200},
		{PetSmall, 1, 0},
		{PetSmall, 2, 0},
		{PetSmall, 4, 100},
		{PetMedium, 3, 50},
	}
	for _, tt := range tests {
		got, err := ComputeExtraCharge(tt.size, tt.count)
		if err != nil {
			t.Fatalf("ComputeExtraCharge(%s, %d) error = %v", tt.size, tt.count, err)
		}
		if got.Amount != tt.want {
			t.Errorf("ComputeExtraCharge(%s, %d) = %d, want %d", tt.size, tt.count, got.Amount, tt.want)
		}
	}

	if _, err := ComputeExtraCharge(PetSmall, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero pets: error = %v, want ErrValidation", err)
	}
	if _, err := ComputeExtraCharge(PetSize("Huge"), 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown size: error = %v, want ErrConfiguration", err)
	}
}

func TestMaxPetsAllowed(t *testing.T) {
	tests := []struct {
		size    PetSize
		vehicle VehicleType
		want    int
	}{
		{PetSmall, VehicleMotorcycle, 2},
		{PetMedium, VehicleMotorcycle, 1},
		{PetLarge, VehicleMotorcycle, 1},
		{PetSmall, VehicleCar, 5},
		{PetMedium, VehicleCar, 3},
		{PetLarge, VehicleCar, 2},
	}
	for _, tt := range tests {
		got, err := MaxPetsAllowed(tt.size, tt.vehicle)
		if err != nil {
			t.Fatalf("MaxPetsAllowed(%s, %s) error = %v", tt.size, tt.vehicle, err)
		}
		if got != tt.want {
			t.Errorf("MaxPetsAllowed(%s, %s) = %d, want %d", tt.size, tt.vehicle, got, tt.want)
		}
	}

	for _, size := range []PetSize{PetSmall, PetMedium, PetLarge} {
		moto, _ := MaxPetsAllowed(size, VehicleMotorcycle)
		car, _ := MaxPetsAllowed(size, VehicleCar)
		if moto < 1 || moto > car {
			t.Errorf("%s: motorcycle capacity %d not within 1..%d", size, moto, car)
		}
	}

	if _, err := MaxPetsAllowed(PetSmall, VehicleType("Van")); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown vehicle: error = %v, want ErrConfiguration", err)
	}
}

func TestCheckCapacity(t *testing.T) {
	if err := CheckCapacity(PetLarge, VehicleCar, 2); err != nil {
		t.Errorf("CheckCapacity(Large, Car, 2) error = %v", err)
	}
	if err := CheckCapacity(PetLarge, VehicleCar, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("CheckCapacity(Large, Car, 3) error = %v, want ErrValidation", err)
	}
	if err := CheckCapacity(PetSmall, VehicleMotorcycle, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("CheckCapacity(Small, Motorcycle, 0) error = %v, want ErrValidation", err)
	}
}

func TestComputeQuote(t *testing.T) {
	q, err := ComputeQuote(QuoteRequest{
		DistanceKm:  12.4,
		VehicleType: VehicleCar,
		PetSize:     PetSmall,
		PetCount:    4,
	})
	if err != nil {
		t.Fatalf("ComputeQuote() error = %v", err)
	}
	if q.BaseFare.Amount != 1000 {
		t.Errorf("BaseFare = %d, want 1000", q.BaseFare.Amount)
	}
	if q.ExtraCharge.Amount != 100 {
		t.Errorf("ExtraCharge = %d, want 100", q.ExtraCharge.Amount)
	}
	if q.TotalFare.Amount != q.BaseFare.Amount+q.ExtraCharge.Amount {
		t.Errorf("TotalFare = %d, want base + extra", q.TotalFare.Amount)
	}

	if _, err := ComputeQuote(QuoteRequest{DistanceKm: 5, VehicleType: VehicleCar, PetSize: PetSmall}); !errors.Is(err, ErrValidation) {
		t.Errorf("missing pet count: error = %v, want ErrValidation", err)
	}
}

func TestService_Capacity(t *testing.T) {
	svc := NewService()
	got, err := svc.Capacity(PetMedium, VehicleMotorcycle, 2)
	if err != nil {
		t.Fatalf("Capacity() error = %v", err)
	}
	if got.MaxPets != 1 || got.WithinCapacity {
		t.Errorf("Capacity() = %+v, want max 1 and not within capacity", got)
	}
}

func TestParseEnums(t *testing.T) {
	if v, err := ParseVehicleType("motorcycle"); err != nil || v != VehicleMotorcycle {
		t.Errorf("ParseVehicleType(motorcycle) = %q, %v", v, err)
	}
	if _, err := ParseVehicleType("boat"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("ParseVehicleType(boat) error = %v", err)
	}
	if s, err := ParsePetSize(" Large "); err != nil || s != PetLarge {
		t.Errorf("ParsePetSize(Large) = %q, %v", s, err)
	}
}

func TestService_QuoteCountsResults(t *testing.T) {
	svc := NewService()
	ok := promtestutil.ToFloat64(observability.QuotesTotal.WithLabelValues(string(VehicleMotorcycle), "ok"))
	rejected := promtestutil.ToFloat64(observability.QuotesTotal.WithLabelValues(string(VehicleMotorcycle), "rejected"))

	_, err := svc.Quote(QuoteRequest{DistanceKm: 10, VehicleType: VehicleMotorcycle, PetSize: PetSmall, PetCount: 1})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	_, err = svc.Quote(QuoteRequest{DistanceKm: 1e19, VehicleType: VehicleMotorcycle, PetSize: PetSmall, PetCount: 1})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Quote() error = %v, want %v", err, ErrValidation)
	}

	if got := promtestutil.ToFloat64(observability.QuotesTotal.WithLabelValues(string(VehicleMotorcycle), "ok")); got != ok+1 {
		t.Errorf("ok quotes = %v, want %v", got, ok+1)
	}
	if got := promtestutil.ToFloat64(observability.QuotesTotal.WithLabelValues(string(VehicleMotorcycle), "rejected")); got != rejected+1 {
		t.Errorf("rejected quotes = %v, want %v", got, rejected+1)
	}
}
