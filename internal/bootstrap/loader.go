// Package bootstrap seeds the country table from a CSV list on first start.
package bootstrap

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

//go:embed countries.csv
var defaultCountries []byte

// Sentinel rows ensured after every load. Numbers sit outside the ISO 3166 numeric range.
const (
	WorldCountryNumber      = 900
	DevelopingCountryNumber = 901
)

// CountryStore is the subset of the country repository the loader writes through.
type CountryStore interface {
	Count(ctx context.Context) (int64, error)
	FindByName(ctx context.Context, name string) (*model.Country, error)
	Save(ctx context.Context, country *model.Country) error
}

// Result summarizes one bootstrap run.
type Result struct {
	Loaded  int  `json:"loaded"`
	Skipped int  `json:"skipped"`
	Seeded  bool `json:"seeded"` // false when the table already had rows
}

type Loader struct {
	countries      CountryStore
	worldName      string
	developingName string
}

func NewLoader(countries CountryStore, worldName, developingName string) *Loader {
	return &Loader{countries: countries, worldName: worldName, developingName: developingName}
}

// OpenSource returns the CSV at path, or the embedded default list when path is empty.
func OpenSource(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(strings.NewReader(string(defaultCountries))), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open countries csv: %w", err)
	}
	return f, nil
}

// Run loads countries from src when the table is empty, then ensures both sentinel rows exist.
func (l *Loader) Run(ctx context.Context, src io.Reader) (Result, error) {
	var res Result

	count, err := l.countries.Count(ctx)
	if err != nil {
		return res, err
	}
	if count > 0 {
		slog.InfoContext(ctx, "countries already loaded", "count", count)
	} else {
		if res, err = l.load(ctx, src); err != nil {
			return res, err
		}
		slog.InfoContext(ctx, "countries loaded", "loaded", res.Loaded, "skipped", res.Skipped)
	}

	if err := l.ensureSentinel(ctx, l.worldName, WorldCountryNumber, "WLD", false); err != nil {
		return res, err
	}
	if err := l.ensureSentinel(ctx, l.developingName, DevelopingCountryNumber, "DEV", true); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) load(ctx context.Context, src io.Reader) (Result, error) {
	res := Result{Seeded: true}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	// header
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, fmt.Errorf("failed to read countries csv header: %w", err)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.WarnContext(ctx, "skipping malformed country line", "error", err)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to read countries csv: %w", err)
		}

		country, err := parseCountry(record)
		if err != nil {
			slog.WarnContext(ctx, "skipping invalid country line", "line", strings.Join(record, ","), "error", err)
			res.Skipped++
			continue
		}
		if err := l.countries.Save(ctx, &country); err != nil {
			return res, err
		}
		res.Loaded++
	}
	return res, nil
}

func parseCountry(record []string) (model.Country, error) {
	if len(record) < 4 {
		return model.Country{}, fmt.Errorf("expected 4 fields, got %d", len(record))
	}
	number, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return model.Country{}, fmt.Errorf("invalid country number %q", record[0])
	}
	name := model.NormalizeCountryKey(record[2])
	if name == "" {
		return model.Country{}, fmt.Errorf("empty country name")
	}
	// Anything but a boolean true reads as not developing.
	developing, _ := strconv.ParseBool(strings.TrimSpace(record[3]))
	return model.Country{
		CountryNumber: number,
		CountryCode:   strings.ToUpper(strings.TrimSpace(record[1])),
		CountryName:   name,
		IsDeveloping:  developing,
	}, nil
}

func (l *Loader) ensureSentinel(ctx context.Context, name string, number int, code string, developing bool) error {
	_, err := l.countries.FindByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}
	sentinel := model.Country{CountryNumber: number, CountryCode: code, CountryName: name, IsDeveloping: developing}
	if err := l.countries.Save(ctx, &sentinel); err != nil {
		return err
	}
	slog.InfoContext(ctx, "created sentinel country", "name", sentinel.CountryName, "number", number)
	return nil
}
