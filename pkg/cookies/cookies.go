// Package cookies converts browser-exported cookies into the flattened
// line-oriented format the acquisition tool consumes, and manages the
// on-disk credential store.
package cookies

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is a single cookie. The structured export form carries extra
// browser-specific fields (hostOnly, sameSite, storeId, ...) that are
// legitimately dropped during conversion.
type Record struct {
	Domain string  `json:"domain"`
	Path   string  `json:"path"`
	Secure bool    `json:"secure"`
	Expiry float64 `json:"expirationDate"`
	Name   string  `json:"name"`
	Value  string  `json:"value"`
}

// Key identifies a cookie within a set.
type Key struct {
	Domain string
	Name   string
}

// Set maps (domain, name) to the most recent record for that cookie.
type Set map[Key]Record

// ParseJSON reads the structured list-of-records export form. Unknown
// fields are ignored.
func ParseJSON(data []byte) (Set, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse cookie export: %w", err)
	}

	set := make(Set, len(records))
	for _, r := range records {
		if r.Domain == "" || r.Name == "" {
			continue
		}
		if r.Path == "" {
			r.Path = "/"
		}
		set[Key{Domain: r.Domain, Name: r.Name}] = r
	}
	return set, nil
}

// MarshalNetscape renders the set in the flattened seven-field
// tab-separated form: domain, include-subdomains flag, path, secure
// flag, expiry epoch, name, value. Output is sorted for stable diffs.
func (s Set) MarshalNetscape() []byte {
	records := make([]Record, 0, len(s))
	for _, r := range s {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Domain != records[j].Domain {
			return records[i].Domain < records[j].Domain
		}
		return records[i].Name < records[j].Name
	})

	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, r := range records {
		b.WriteString(netscapeLine(r))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func netscapeLine(r Record) string {
	// A leading dot marks a domain cookie, which applies to subdomains.
	includeSub := "FALSE"
	if strings.HasPrefix(r.Domain, ".") {
		includeSub = "TRUE"
	}
	secure := "FALSE"
	if r.Secure {
		secure = "TRUE"
	}
	return strings.Join([]string{
		r.Domain,
		includeSub,
		r.Path,
		secure,
		strconv.FormatInt(int64(r.Expiry), 10),
		r.Name,
		r.Value,
	}, "\t")
}

// ParseNetscape reads the flattened form back into a Set. Comment and
// blank lines are skipped; malformed lines are dropped.
func ParseNetscape(data []byte) Set {
	set := make(Set)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}
		r := Record{
			Domain: fields[0],
			Path:   fields[2],
			Secure: fields[3] == "TRUE",
			Expiry: float64(expiry),
			Name:   fields[5],
			Value:  fields[6],
		}
		set[Key{Domain: r.Domain, Name: r.Name}] = r
	}
	return set
}

// ConvertJSONToNetscape is the end-to-end conversion from the
// structured export form to the canonical tool input.
func ConvertJSONToNetscape(data []byte) ([]byte, error) {
	set, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("cookie export contains no usable records")
	}
	return set.MarshalNetscape(), nil
}
