package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IngestTimelapseID is assigned to every record decoded from an ingest
// name, which carries no timelapse identifier of its own.
const IngestTimelapseID = "20240808-111112"

// canonicalSegments is the number of parts a canonical name splits into.
const canonicalSegments = 10

var (
	canonicalSplit = regexp.MustCompile(`timelapseID-|SPC-|TP-|ILL-|CAM-|CH-|PL-|outOf-|\.`)

	// Anchored at the start only; anything after the extension word is ignored.
	ingestPattern = regexp.MustCompile(`^_channel(\d+)_position(\d+)_time(\d+)_view(\d+)_z(\d+)\.(\w+)`)
)

// integer fields of a canonical name, by segment index
var canonicalIntFields = []struct {
	index int
	name  string
}{
	{2, "specimen"},
	{3, "time_point"},
	{4, "illumination"},
	{5, "camera"},
	{6, "channel"},
	{7, "plane"},
}

// DecodeCanonical parses a basename written with the canonical grammar.
// dir is stored in the record's Directory field and not inspected.
func DecodeCanonical(filename, dir string) (ImageRecord, error) {
	parts := canonicalSplit.Split(filename, -1)
	if len(parts) != canonicalSegments {
		return ImageRecord{}, &NotImagePlaneFileError{
			Name:   filename,
			Reason: fmt.Sprintf("expected %d parts after splitting by %s, got %d", canonicalSegments, canonicalSplit, len(parts)),
		}
	}

	ints := make(map[int]int, len(canonicalIntFields))
	for _, f := range canonicalIntFields {
		v, err := parseIndex(trimSeparators(parts[f.index]))
		if err != nil {
			return ImageRecord{}, &NotImagePlaneFileError{Name: filename, Field: f.name, Reason: err.Error()}
		}
		ints[f.index] = v
	}

	total, info, _ := strings.Cut(trimSeparators(parts[8]), "_")
	totalNumPlanes, err := parseIndex(trimSeparators(total))
	if err != nil {
		return ImageRecord{}, &NotImagePlaneFileError{Name: filename, Field: "total_num_planes", Reason: err.Error()}
	}

	return ImageRecord{
		DatasetName:    trimSeparators(parts[0]),
		TimelapseID:    trimSeparators(parts[1]),
		Specimen:       ints[2],
		TimePoint:      ints[3],
		Illumination:   ints[4],
		Camera:         ints[5],
		Channel:        ints[6],
		Plane:          ints[7],
		TotalNumPlanes: totalNumPlanes,
		AdditionalInfo: info,
		Extension:      parts[9],
		Directory:      dir,
	}, nil
}

// DecodeIngest parses a basename written by the acquisition tool.
// dir is stored in the record's Directory field and not inspected.
func DecodeIngest(filename, dir string) (ImageRecord, error) {
	m := ingestPattern.FindStringSubmatch(filename)
	if m == nil {
		return ImageRecord{}, &NotImagePlaneFileError{
			Name:   filename,
			Reason: fmt.Sprintf("does not match %s", ingestPattern),
		}
	}

	fields := []struct {
		name string
		raw  string
	}{
		{"channel", m[1]},
		{"position", m[2]},
		{"time", m[3]},
		{"view", m[4]},
		{"z", m[5]},
	}
	vals := make([]int, len(fields))
	for i, f := range fields {
		v, err := parseIndex(f.raw)
		if err != nil {
			return ImageRecord{}, &NotImagePlaneFileError{Name: filename, Field: f.name, Reason: err.Error()}
		}
		vals[i] = v
	}

	return ImageRecord{
		TimelapseID:    IngestTimelapseID,
		Specimen:       vals[1],
		TimePoint:      vals[2],
		Illumination:   0,
		Camera:         0,
		Channel:        vals[0],
		Plane:          vals[4],
		TotalNumPlanes: 1,
		Extension:      m[6],
		Directory:      dir,
	}, nil
}

// Decode tries the canonical grammar first and falls back to the ingest
// grammar. The canonical error is returned when neither matches.
func Decode(filename, dir string) (ImageRecord, error) {
	rec, err := DecodeCanonical(filename, dir)
	if err == nil {
		return rec, nil
	}
	if rec, ingestErr := DecodeIngest(filename, dir); ingestErr == nil {
		return rec, nil
	}
	return ImageRecord{}, err
}

func trimSeparators(s string) string {
	return strings.Trim(s, "-_")
}

// parseIndex accepts plain decimal digits only.
func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not a non-negative integer", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return v, nil
}
