// Command genweather generates a synthetic weather-station CSV fixture for
// the detector and QC test suites. Headers use vendor-style names and
// imperial units so the fixture exercises column detection and unit
// conversion, and known anomalies (spikes, a flatline, out-of-range values,
// gaps) are injected so QC checks have something to find.
//
// Usage:
//
//	go run ./cmd/genweather -out data/mock/sample_weather.csv -days 30
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var startDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	days := flag.Int("days", 30, "number of days to generate")
	step := flag.Duration("step", 10*time.Minute, "sampling interval")
	seed := flag.Int64("seed", 42, "random seed")
	clean := flag.Bool("clean", false, "skip anomaly and gap injection")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rows := synthesize(*days, *step, rand.New(rand.NewSource(*seed)), !*clean)

	if err := writeCSV(*out, rows); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d rows to %s", len(rows), *out)
	printStats(rows)
	return nil
}

// row holds one observation in vendor units. NaN cells serialize as empty.
type row struct {
	ts                                                time.Time
	tempF, rhPct, presMbar, wspdMph, wdirDeg, gustMph float64
	rainMM, solarWM2, uvIndex                         float64
	spiked, flat, outOfRange, gap                     bool
}

func synthesize(days int, step time.Duration, rng *rand.Rand, anomalies bool) []row {
	n := int(time.Duration(days) * 24 * time.Hour / step)
	rows := make([]row, n)

	wdir := rng.Float64() * 360
	for i := range rows {
		ts := startDate.Add(time.Duration(i) * step)
		dayOfYear := float64(ts.YearDay())
		hour := float64(ts.Hour()) + float64(ts.Minute())/60

		// Seasonal base plus diurnal swing plus noise, in °C.
		tempC := 15 + 10*math.Sin(2*math.Pi*(dayOfYear-80)/365) +
			5*math.Sin(2*math.Pi*(hour-6)/24) +
			rng.NormFloat64()*1.5

		// Humidity runs inversely to temperature.
		rh := clamp(70-0.5*(tempC-15)+rng.NormFloat64()*5, 10, 100)

		pres := 1013 + 10*math.Sin(2*math.Pi*dayOfYear/30) + rng.NormFloat64()*2

		wspd := clamp(math.Exp(1.0+rng.NormFloat64()*0.8), 0, 30)
		wdir = math.Mod(wdir+rng.NormFloat64()*20+360, 360)
		gust := clamp(wspd+rng.ExpFloat64()*1.5, wspd, 50)

		var rain float64
		if rng.Float64() < 0.05 {
			rain = clamp(rng.ExpFloat64()*2, 0, 50)
		}

		solarPotential := math.Max(0, math.Sin(2*math.Pi*(hour-6)/12))
		solar := 1000 * solarPotential * (1 + 0.3*math.Sin(2*math.Pi*(dayOfYear-172)/365))
		if rain > 0 {
			solar *= 0.3
		} else {
			solar *= 0.7 + rng.Float64()*0.3
		}
		solar = clamp(solar, 0, 1200)

		r := row{
			ts:       ts,
			tempF:    tempC*9/5 + 32,
			rhPct:    rh,
			presMbar: pres,
			wspdMph:  wspd * 2.23694,
			wdirDeg:  wdir,
			gustMph:  gust * 2.23694,
			rainMM:   rain,
			solarWM2: solar,
			uvIndex:  clamp(solar/100, 0, 12),
		}
		// Direction is meaningless in calm air; vendors report it blank.
		if wspd < 0.5 {
			r.wdirDeg = math.NaN()
		}
		rows[i] = r
	}

	if anomalies && n > 400 {
		injectAnomalies(rows, rng)
	}
	return rows
}

func injectAnomalies(rows []row, rng *rand.Rand) {
	n := len(rows)
	pick := func() int { return 100 + rng.Intn(n-200) }

	for i := 0; i < 5; i++ {
		j := pick()
		rows[j].tempF += 30 + rng.Float64()*20
		rows[j].spiked = true
	}

	// Stuck humidity sensor.
	start := pick()
	for j := start; j < start+50 && j < n; j++ {
		rows[j].rhPct = 65.0
		rows[j].flat = true
	}

	j := pick()
	rows[j].rhPct = 150.0
	rows[j].outOfRange = true

	j = pick()
	rows[j].presMbar = -10.0
	rows[j].outOfRange = true

	// Knock out ~2% of rows entirely.
	for i := 0; i < n/50; i++ {
		rows[pick()].gap = true
	}
}

func writeCSV(path string, rows []row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"DateTime",
		"Temperature (°F)",
		"Relative Humidity (%)",
		"Pressure (mbar)",
		"Wind Speed (mph)",
		"Wind Direction (°)",
		"Wind Gust (mph)",
		"Rainfall (mm)",
		"Solar Radiation (W/m²)",
		"UV Index",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		rec := []string{
			r.ts.Format("2006-01-02 15:04:05"),
			cell(r.tempF, r.gap),
			cell(r.rhPct, r.gap),
			cell(r.presMbar, r.gap),
			cell(r.wspdMph, r.gap),
			cell(r.wdirDeg, r.gap),
			cell(r.gustMph, r.gap),
			cell(r.rainMM, r.gap),
			cell(r.solarWM2, r.gap),
			cell(r.uvIndex, r.gap),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cell(v float64, gap bool) string {
	if gap || math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func printStats(rows []row) {
	var spikes, flats, oor, gaps int
	for i := range rows {
		if rows[i].spiked {
			spikes++
		}
		if rows[i].flat {
			flats++
		}
		if rows[i].outOfRange {
			oor++
		}
		if rows[i].gap {
			gaps++
		}
	}
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total rows: %d\n", len(rows))
	fmt.Printf("Temperature spikes: %d\n", spikes)
	fmt.Printf("Flatlined humidity rows: %d\n", flats)
	fmt.Printf("Out-of-range rows: %d\n", oor)
	fmt.Printf("Gap rows: %d\n", gaps)
	fmt.Printf("Span: %s to %s\n",
		rows[0].ts.Format(time.RFC3339), rows[len(rows)-1].ts.Format(time.RFC3339))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
