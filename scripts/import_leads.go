// import_leads.go is a standalone script that imports historical
// inquiries from a CSV export and submits them as leads via the
// Spacify API.
//
// The CSV is header-mapped: columns may appear in any order, and only
// the columns present are sent. Recognized headers: budget_band,
// move_in_date, nationality, area, property, source, occupants,
// has_vehicle, needs_parking, tenancy_months, gender, unit_type,
// workplace.
//
// Usage:
//
//	go run scripts/import_leads.go -csv /path/to/inquiries.csv -api http://localhost:8080 -client import-script
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type leadPayload struct {
	BudgetBand    string     `json:"budget_band,omitempty"`
	MoveInDate    *time.Time `json:"move_in_date,omitempty"`
	Nationality   string     `json:"nationality,omitempty"`
	Area          string     `json:"area,omitempty"`
	Property      string     `json:"property,omitempty"`
	Source        string     `json:"source,omitempty"`
	Occupants     int        `json:"occupants,omitempty"`
	HasVehicle    bool       `json:"has_vehicle,omitempty"`
	NeedsParking  bool       `json:"needs_parking,omitempty"`
	TenancyMonths int        `json:"tenancy_months,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	UnitType      string     `json:"unit_type,omitempty"`
	Workplace     string     `json:"workplace,omitempty"`
}

func main() {
	csvPath := flag.String("csv", "inquiries.csv", "path to the CSV export")
	apiURL := flag.String("api", "http://localhost:8080", "Spacify API base URL")
	clientID := flag.String("client", "import-script", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print leads without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("read header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var payloads []leadPayload
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("skip line %d: %v", line, err)
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		p := leadPayload{
			BudgetBand:  field("budget_band"),
			Nationality: field("nationality"),
			Area:        field("area"),
			Property:    field("property"),
			Source:      field("source"),
			Gender:      field("gender"),
			UnitType:    field("unit_type"),
			Workplace:   field("workplace"),
		}
		if v := field("move_in_date"); v != "" {
			moveIn, err := parseDate(v)
			if err != nil {
				log.Printf("line %d: bad move_in_date %q: %v", line, v, err)
			} else {
				p.MoveInDate = &moveIn
			}
		}
		if v := field("occupants"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				p.Occupants = n
			}
		}
		if v := field("tenancy_months"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				p.TenancyMonths = n
			}
		}
		p.HasVehicle = parseBool(field("has_vehicle"))
		p.NeedsParking = parseBool(field("needs_parking"))

		payloads = append(payloads, p)
	}

	log.Printf("parsed %d leads from %s", len(payloads), *csvPath)

	if *dryRun {
		for i, p := range payloads {
			moveIn := "none"
			if p.MoveInDate != nil {
				moveIn = p.MoveInDate.Format("2006-01-02")
			}
			fmt.Printf("[%d] %s / %s (budget=%s, move-in=%s, occupants=%d)\n",
				i+1, p.Area, p.Property, p.BudgetBand, moveIn, p.Occupants)
		}
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	created, skipped := 0, 0
	for i, p := range payloads {
		body, _ := json.Marshal(p)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/leads", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip lead %d: %v", i+1, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip lead %d: %v", i+1, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip lead %d: status %d", i+1, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
