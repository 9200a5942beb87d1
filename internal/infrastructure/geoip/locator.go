package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/qrdesk-api/internal/domain"
)

const unknown = "Unknown"

// Locator resolves an IP to a coarse location using a MaxMind City database.
// A nil Locator, or a lookup that fails, yields Unknown/Unknown.
type Locator struct {
	reader *geoip2.Reader
}

func Open(path string) (*Locator, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db: %w", err)
	}
	return &Locator{reader: r}, nil
}

func (l *Locator) Lookup(ip string) domain.Location {
	loc := domain.Location{Country: unknown, City: unknown}
	if l == nil || l.reader == nil {
		return loc
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return loc
	}
	rec, err := l.reader.City(parsed)
	if err != nil {
		return loc
	}
	if rec.Country.IsoCode != "" {
		loc.Country = rec.Country.IsoCode
	}
	if name := rec.City.Names["en"]; name != "" {
		loc.City = name
	}
	return loc
}

func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
