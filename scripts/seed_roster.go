// seed_roster.go — standalone script to seed a demo attorney roster and case
// history via the leadrouter API.
//
// Usage:
//
//	go run scripts/seed_roster.go -api http://localhost:8700 -operator system
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type attorney struct {
	FirmName           string  `json:"firm_name"`
	LicensingState     string  `json:"licensing_state"`
	GeographicCoverage string  `json:"geographic_coverage,omitempty"`
	PracticeAreas      string  `json:"practice_areas,omitempty"`
	CapacityStatus     string  `json:"capacity_status,omitempty"`
	YearsExperience    float64 `json:"years_experience,omitempty"`
}

type lead struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone,omitempty"`
	State        string `json:"state"`
	AccidentType string `json:"accident_type"`
	Notes        string `json:"notes,omitempty"`
}

var roster = []attorney{
	{
		FirmName:        "Valdez & Partners",
		LicensingState:  "CA",
		PracticeAreas:   "car_accident, truck_accident, motorcycle_accident",
		CapacityStatus:  "available",
		YearsExperience: 15,
	},
	{
		FirmName:           "Pacific Crest Injury Law",
		LicensingState:     "OR",
		GeographicCoverage: "CA, WA, NV",
		PracticeAreas:      "car_accident, pedestrian_accident",
		CapacityStatus:     "limited",
		YearsExperience:    9,
	},
	{
		FirmName:           "Hartley National Group",
		LicensingState:     "TX",
		GeographicCoverage: "nationwide",
		PracticeAreas:      "truck_accident, workplace_injury",
		CapacityStatus:     "available",
		YearsExperience:    22,
	},
	{
		FirmName:        "Monroe Medical Law",
		LicensingState:  "NY",
		PracticeAreas:   "medical_malpractice, nursing_home_abuse",
		CapacityStatus:  "available",
		YearsExperience: 11,
	},
	{
		FirmName:        "Delgado Trial Attorneys",
		LicensingState:  "FL",
		PracticeAreas:   "slip_and_fall, premises_liability",
		CapacityStatus:  "full",
		YearsExperience: 18,
	},
}

var intake = []lead{
	{
		FullName:     "Maria Gonzalez",
		Phone:        "555-0142",
		State:        "CA",
		AccidentType: "car_accident",
		Notes:        "Rear-ended at a stoplight. Pain level: 8. Hospitalized overnight.",
	},
	{
		FullName:     "James Okafor",
		State:        "TX",
		AccidentType: "truck_accident",
		Notes:        "Commercial vehicle collision on I-35.",
	},
	{
		FullName:     "Anne Whitfield",
		State:        "VT",
		AccidentType: "bicycle_accident",
		Notes:        "Minor injuries, driver left the scene.",
	},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "leadrouter API base URL")
	operatorID := flag.String("operator", "system", "X-Operator-ID header value")
	token := flag.String("token", "", "operator bearer token")
	dryRun := flag.Bool("dry-run", false, "print records without posting")
	flag.Parse()

	if *dryRun {
		for i, a := range roster {
			fmt.Printf("[attorney %d] %s (%s, %s, %.0f yrs)\n", i+1, a.FirmName, a.LicensingState, a.CapacityStatus, a.YearsExperience)
		}
		for i, l := range intake {
			fmt.Printf("[lead %d] %s (%s, %s)\n", i+1, l.FullName, l.State, l.AccidentType)
		}
		return
	}

	client := &http.Client{}
	post := func(path string, v interface{}) bool {
		body, _ := json.Marshal(v)
		req, err := http.NewRequest("POST", *apiURL+path, bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			return false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Operator-ID", *operatorID)
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", path, err)
			return false
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			log.Printf("skip %s: status %d", path, resp.StatusCode)
			return false
		}
		return true
	}

	created, skipped := 0, 0
	for _, a := range roster {
		if post("/api/v1/attorneys", a) {
			created++
		} else {
			skipped++
		}
	}
	for _, l := range intake {
		if post("/api/v1/leads", l) {
			created++
		} else {
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}
