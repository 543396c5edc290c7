// README: quote command; prints a fare breakdown for a known distance. No network or database.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"petlove/internal/modules/pricing"
)

var quoteFlags struct {
	distance float64
	vehicle  string
	petSize  string
	pets     int
}

var quoteCmd = &cobra.Command{
	Use:     "quote",
	Short:   "Print a fare quote",
	Example: `  petlove-api quote --distance 12.3 --vehicle car --pet-size small --pets 3`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		q, err := quote(quoteFlags.distance, quoteFlags.vehicle, quoteFlags.petSize, quoteFlags.pets)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	},
}

func init() {
	f := quoteCmd.Flags()
	f.Float64Var(&quoteFlags.distance, "distance", 0, "driving distance in km")
	f.StringVar(&quoteFlags.vehicle, "vehicle", string(pricing.VehicleCar), "Car or Motorcycle")
	f.StringVar(&quoteFlags.petSize, "pet-size", string(pricing.PetSmall), "Small, Medium or Large")
	f.IntVar(&quoteFlags.pets, "pets", 1, "number of pets")
	_ = quoteCmd.MarkFlagRequired("distance")
}

func quote(distance float64, vehicle, size string, pets int) (pricing.Quote, error) {
	v, err := pricing.ParseVehicleType(vehicle)
	if err != nil {
		return pricing.Quote{}, err
	}
	s, err := pricing.ParsePetSize(size)
	if err != nil {
		return pricing.Quote{}, err
	}
	if err := pricing.CheckCapacity(s, v, pets); err != nil {
		return pricing.Quote{}, err
	}
	return pricing.ComputeQuote(pricing.QuoteRequest{DistanceKm: distance, VehicleType: v, PetSize: s, PetCount: pets})
}
