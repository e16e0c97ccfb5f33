package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/souqly/storefront/internal/domain/coupon"
)

// Column order of the import files. A first row starting with "code" is
// treated as a header.
const (
	colCode = iota
	colDiscountType
	colDiscountValue
	colMinPurchase
	colMaxDiscount
	colUsageLimit
	colValidUntil
	numColumns
)

// rowError reports a malformed import row. Such rows are skipped.
type rowError struct {
	File string
	Line int
	Err  error
}

func (e *rowError) Error() string {
	return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *rowError) Unwrap() error { return e.Err }

// parseRecord converts one CSV record into a validated coupon definition.
// Empty optional columns leave the corresponding limit unset.
func parseRecord(rec []string) (coupon.Coupon, error) {
	if len(rec) != numColumns {
		return coupon.Coupon{}, errors.Errorf("expected %d columns, got %d", numColumns, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}

	c := coupon.Coupon{
		Code:         coupon.NormalizeCode(rec[colCode]),
		DiscountType: coupon.DiscountType(strings.ToLower(rec[colDiscountType])),
		IsActive:     true,
	}

	var err error
	if c.DiscountValue, err = decimal.NewFromString(rec[colDiscountValue]); err != nil {
		return coupon.Coupon{}, errors.Wrap(err, "discount_value")
	}
	if v := rec[colMinPurchase]; v != "" {
		if c.MinPurchaseAmount, err = decimal.NewFromString(v); err != nil {
			return coupon.Coupon{}, errors.Wrap(err, "min_purchase")
		}
	}
	if v := rec[colMaxDiscount]; v != "" {
		maxDiscount, err := decimal.NewFromString(v)
		if err != nil {
			return coupon.Coupon{}, errors.Wrap(err, "max_discount")
		}
		c.MaxDiscountAmount = decimal.NewNullDecimal(maxDiscount)
	}
	if v := rec[colUsageLimit]; v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return coupon.Coupon{}, errors.Wrap(err, "usage_limit")
		}
		c.UsageLimit = &limit
	}
	if v := rec[colValidUntil]; v != "" {
		until, err := parseTime(v)
		if err != nil {
			return coupon.Coupon{}, errors.Wrap(err, "valid_until")
		}
		c.ValidUntil = &until
	}

	if err := c.Validate(); err != nil {
		return coupon.Coupon{}, err
	}
	return c, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates. A plain date is valid
// through the end of that day in UTC.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

// readFile streams a gzip-compressed CSV file, calling emit for every valid
// row and skip for every malformed one.
func readFile(ctx context.Context, path string, emit func(coupon.Coupon) error, skip func(*rowError)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return readCSV(ctx, path, gz, emit, skip)
}

func readCSV(ctx context.Context, name string, r io.Reader, emit func(coupon.Coupon) error, skip func(*rowError)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skip(&rowError{File: name, Line: line, Err: err})
				continue
			}
			return errors.Wrapf(err, "read %s", name)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "code") {
			continue
		}

		c, err := parseRecord(rec)
		if err != nil {
			skip(&rowError{File: name, Line: line, Err: err})
			continue
		}
		if err := emit(c); err != nil {
			return err
		}
	}
}

// dedupe remembers codes across all import files. The bloom filter answers
// most lookups for new codes; its positives are confirmed against the exact
// set so false positives never drop a coupon.
type dedupe struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

func newDedupe(capacity uint, fpRate float64) *dedupe {
	return &dedupe{
		filter: bloom.NewWithEstimates(capacity, fpRate),
		exact:  make(map[string]struct{}),
	}
}

// firstSeen records code and reports whether it had not been seen before.
func (d *dedupe) firstSeen(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.TestAndAddString(code) {
		if _, ok := d.exact[code]; ok {
			return false
		}
	}
	d.exact[code] = struct{}{}
	return true
}
