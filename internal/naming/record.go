package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StackToken replaces the plane number in a stack name.
const StackToken = "(ZS)"

// Mode selects the plane segment rendered by Encode.
type Mode int

const (
	// ModePlane renders the zero-padded plane number.
	ModePlane Mode = iota
	// ModeStack renders StackToken in place of the plane number.
	ModeStack
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModePlane:
		return "plane"
	case ModeStack:
		return "stack"
	default:
		return "unknown"
	}
}

// ImageRecord is the decoded form of one image plane filename.
// Records are plain values; decoders build them in one step and nothing
// mutates them afterwards.
type ImageRecord struct {
	DatasetName    string `json:"dataset_name,omitempty" yaml:"dataset_name,omitempty" toml:"dataset_name,omitempty"`
	TimelapseID    string `json:"timelapse_id" yaml:"timelapse_id" toml:"timelapse_id"`
	Specimen       int    `json:"specimen" yaml:"specimen" toml:"specimen"`
	TimePoint      int    `json:"time_point" yaml:"time_point" toml:"time_point"`
	Illumination   int    `json:"illumination" yaml:"illumination" toml:"illumination"`
	Camera         int    `json:"camera" yaml:"camera" toml:"camera"`
	Channel        int    `json:"channel" yaml:"channel" toml:"channel"`
	Plane          int    `json:"plane" yaml:"plane" toml:"plane"`
	TotalNumPlanes int    `json:"total_num_planes" yaml:"total_num_planes" toml:"total_num_planes"`
	AdditionalInfo string `json:"additional_info,omitempty" yaml:"additional_info,omitempty" toml:"additional_info,omitempty"`
	Extension      string `json:"extension" yaml:"extension" toml:"extension"`

	// Directory is where the file lives or will live. It is not part of the
	// name and only used by FilePath and StackPath.
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty" toml:"directory,omitempty"`
}

// Encode formats rec with the canonical grammar.
// Empty dataset name and additional info are omitted along with their
// separators. Free-form fields are written as-is.
func Encode(rec ImageRecord, mode Mode) string {
	var b strings.Builder

	if rec.DatasetName != "" {
		b.WriteString(rec.DatasetName)
		b.WriteByte('_')
	}

	plane := StackToken
	if mode != ModeStack {
		plane = fmt.Sprintf("%04d", rec.Plane)
	}

	fmt.Fprintf(&b, "timelapseID-%s_SPC-%04d_TP-%04d_ILL-%d_CAM-%d_CH-%02d_PL-%s-outOf-%04d",
		rec.TimelapseID, rec.Specimen, rec.TimePoint, rec.Illumination,
		rec.Camera, rec.Channel, plane, rec.TotalNumPlanes)

	if rec.AdditionalInfo != "" {
		b.WriteByte('_')
		b.WriteString(rec.AdditionalInfo)
	}

	b.WriteByte('.')
	b.WriteString(rec.Extension)

	return b.String()
}

// Name returns the canonical plane filename.
func (r ImageRecord) Name() string {
	return Encode(r, ModePlane)
}

// StackName returns the canonical name of the z-stack containing this plane.
func (r ImageRecord) StackName() string {
	return Encode(r, ModeStack)
}

// NameWithoutExtension returns Name with the trailing extension removed.
func (r ImageRecord) NameWithoutExtension() string {
	name := r.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// FilePath joins Directory and Name.
func (r ImageRecord) FilePath() string {
	return filepath.Join(r.Directory, r.Name())
}

// StackPath joins Directory and StackName.
func (r ImageRecord) StackPath() string {
	return filepath.Join(r.Directory, r.StackName())
}
