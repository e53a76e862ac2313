// Command genmock generates deterministic synthetic input CSVs for the EWS
// pipeline: the three activity streams plus the pincode reference. The data
// includes a sprinkle of unresolvable pincodes and malformed dates so the
// resolution audit and drop counters have something to report.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -districts 12 -weeks 10 -seed 7
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

type district struct {
	state    string
	district string
	pincode  string
	scale    int // activity level multiplier
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for generated CSVs")
	nDistricts := flag.Int("districts", 12, "number of districts")
	nWeeks := flag.Int("weeks", 10, "number of weeks of daily data")
	seed := flag.Int64("seed", 7, "random seed")
	start := flag.String("start", "06-01-2026", "first day, DD-MM-YYYY")
	flag.Parse()

	startDate, err := time.Parse("02-01-2006", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	districts := makeDistricts(rng, *nDistricts)

	if err := writePincodes(*outDir, districts); err != nil {
		return err
	}
	log.Printf("pincode reference: %d districts", len(districts))

	days := *nWeeks * 7
	streams := []struct {
		file     string
		brackets []string
	}{
		{"enrolment.csv", []string{"age_0_5", "age_5_17", "age_18_greater"}},
		{"demographic.csv", []string{"demo_age_5_17", "demo_age_17_"}},
		{"biometric.csv", []string{"bio_age_5_17", "bio_age_17_"}},
	}
	for _, s := range streams {
		n, err := writeStream(*outDir, s.file, s.brackets, districts, startDate, days, rng)
		if err != nil {
			return err
		}
		log.Printf("%s: %d rows", s.file, n)
	}
	return nil
}

var stateNames = []string{"KERALA", "BIHAR", "ASSAM", "ODISHA", "PUNJAB", "TRIPURA"}

func makeDistricts(rng *rand.Rand, n int) []district {
	out := make([]district, n)
	for i := range out {
		out[i] = district{
			state:    stateNames[i%len(stateNames)],
			district: fmt.Sprintf("DISTRICT %02d", i+1),
			pincode:  fmt.Sprintf("%06d", 110001+i*37),
			scale:    1 + rng.Intn(9),
		}
	}
	return out
}

func writePincodes(dir string, districts []district) error {
	rows := [][]string{{"pincode", "district", "statename"}}
	for _, d := range districts {
		// Reference labels are deliberately messy; the resolver normalizes.
		rows = append(rows, []string{d.pincode, " " + d.district + " ", d.state})
	}
	return writeCSV(filepath.Join(dir, "pincode_reference.csv"), rows)
}

func writeStream(dir, file string, brackets []string, districts []district, start time.Time, days int, rng *rand.Rand) (int, error) {
	rows := [][]string{append([]string{"date", "pincode", "state", "district"}, brackets...)}

	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day).Format("02-01-2006")
		for i, d := range districts {
			rec := []string{date, d.pincode, d.state, d.district}

			// Every 97th row gets a malformed date; every 53rd an unknown
			// pincode, exercising the soft-fallback path.
			n := day*len(districts) + i
			if n%97 == 13 {
				rec[0] = "31-13-20xx"
			}
			if n%53 == 7 {
				rec[1] = "999999"
			}

			for range brackets {
				rec = append(rec, fmt.Sprintf("%d", rng.Intn(20*d.scale)))
			}
			rows = append(rows, rec)
		}
	}

	return len(rows) - 1, writeCSV(filepath.Join(dir, file), rows)
}

func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
