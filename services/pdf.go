package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"itinera/itinerary"
)

// RenderItineraryPDF lays out a normalized itinerary and returns raw bytes
// (no filesystem needed). It only reads the record, so every field it prints
// has already been defaulted.
func RenderItineraryPDF(it *itinerary.Itinerary) ([]byte, error) {
	if it == nil {
		return nil, fmt.Errorf("no itinerary to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Generated by Itinera - Not a booking confirmation - Page %d", pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Itinera", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, tr(it.Destination), "", 1, "L", false, 0, "")

	pdf.SetY(35)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	pdf.MultiCell(164, 4,
		"This is NOT a booking confirmation. Prices and times are estimates and subject to change. Please verify with providers before booking.",
		"", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	// ── Section Helpers ──────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(125, 7, tr(value), "", "L", false)
	}

	paragraph := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, tr(text), "", "L", false)
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s - %s", it.StartingPoint, it.Destination))
	row("Start", fmtDateReadable(it.StartDate))
	row("End", fmtDateReadable(it.EndDate))
	row("Duration", tripLength(it))
	row("Travelers", fmt.Sprintf("%d (%s)", it.TravelersCount, it.TravelGroupType))
	pdf.Ln(2)
	paragraph(it.Description)
	pdf.Ln(4)

	// ── Travel Details ────────────────────────────────────────
	sectionHeader("Getting There and Back")
	legs := []struct {
		label string
		leg   itinerary.TravelLeg
	}{
		{"Arrival", it.TravelDetails.Arrival},
		{"Departure", it.TravelDetails.Departure},
	}
	for _, l := range legs {
		row(l.label, fmt.Sprintf("%s - %s", l.leg.Mode, l.leg.Airline))
		row("", formatLeg(l.leg))
		row("", fmt.Sprintf("%s (%s)", l.leg.Price, l.leg.Airport))
	}
	pdf.Ln(4)

	// ── Days ──────────────────────────────────────────────────
	for _, d := range it.Days {
		sectionHeader(fmt.Sprintf("Day %d - %s (%s)", d.DayNumber, d.Title, d.Date.Format("02 Jan")))
		for _, a := range d.Activities {
			row(a.Time, fmt.Sprintf("%s [%s]", a.Title, a.Type))
			row("", a.Location)
			if a.Description != "" {
				row("", a.Description)
			}
		}
		if d.Accommodation != nil {
			row("Overnight", fmt.Sprintf("%s, %s", d.Accommodation.Name, d.Accommodation.Location))
		}
		pdf.Ln(3)
	}

	// ── Accommodations ────────────────────────────────────────
	if len(it.Accommodations) > 0 {
		sectionHeader("Where to Stay")
		for _, a := range it.Accommodations {
			row(a.Type, a.Name)
			row("", fmt.Sprintf("%s - %s", a.Address, a.PriceRange))
		}
		pdf.Ln(4)
	}

	// ── Tips ──────────────────────────────────────────────────
	if len(it.Tips) > 0 {
		sectionHeader("Travel Tips")
		for _, t := range it.Tips {
			row(t.Category, t.Title)
			for _, line := range t.Content {
				row("", "- "+line)
			}
		}
	}

	// ── Write to buffer ───────────────────────────────────────
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func tripLength(it *itinerary.Itinerary) string {
	nights := int(it.EndDate.Sub(it.StartDate).Hours() / 24)
	if nights < 0 {
		nights = 0
	}
	days := len(it.Days)
	return fmt.Sprintf("%d day(s), %d night(s)", days, nights)
}

// formatLeg shows RFC3339 times compactly and anything else verbatim.
func formatLeg(leg itinerary.TravelLeg) string {
	route := fmt.Sprintf("%s - %s", leg.From, leg.To)
	depT, err1 := time.Parse(time.RFC3339, leg.DepartureTime)
	arrT, err2 := time.Parse(time.RFC3339, leg.ArrivalTime)
	if err1 != nil || err2 != nil {
		depT, err1 = time.Parse("2006-01-02T15:04:05", leg.DepartureTime)
		arrT, err2 = time.Parse("2006-01-02T15:04:05", leg.ArrivalTime)
	}
	if err1 != nil || err2 != nil {
		return strings.TrimSpace(fmt.Sprintf("%s, %s to %s", route, leg.DepartureTime, leg.ArrivalTime))
	}
	return fmt.Sprintf("%s, %s to %s", route, depT.Format("02 Jan 15:04"), arrT.Format("02 Jan 15:04"))
}
