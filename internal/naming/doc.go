// Package naming parses and formats light-sheet image plane filenames.
//
// # Canonical Filenames
//
// Every plane republished by spimrelay is named with the canonical grammar:
//
//	[<dataset>_]timelapseID-<id>_SPC-<specimen>_TP-<time>_ILL-<illum>_CAM-<cam>_CH-<chan>_PL-<plane>-outOf-<total>[_<info>].<ext>
//
// Example: timelapseID-20240808-111112_SPC-0002_TP-0003_ILL-0_CAM-0_CH-01_PL-0004-outOf-0001.tif
//
// Specimen, time point, plane and total are zero padded to four digits,
// channel to two. Illumination and camera are not padded. The dataset prefix
// and the additional info suffix are dropped entirely when empty.
//
// A stack name replaces the plane number with the token (ZS) and refers to
// the whole z-stack file the plane belongs to:
//
//	timelapseID-20240808-111112_SPC-0002_TP-0003_ILL-0_CAM-0_CH-01_PL-(ZS)-outOf-0001.tif
//
// # Ingest Filenames
//
// The acquisition tool writes planes as
//
//	_channel<n>_position<n>_time<n>_view<n>_z<n>.<ext>
//
// DecodeIngest maps position to specimen and z to plane. The view index is
// validated but not kept. Ingested records carry the fixed IngestTimelapseID
// and a single-plane total.
//
// # Usage Examples
//
// Converting an ingest name to a canonical one:
//
//	rec, err := naming.DecodeIngest("_channel01_position0002_time0003_view0_z0004.tif", "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rec.Name())
//
// Checking for a malformed name:
//
//	if _, err := naming.DecodeCanonical(name, dir); errors.Is(err, naming.ErrNotImagePlaneFile) {
//	    // not an image plane, skip it
//	}
//
// # Known Limitations
//
// The canonical grammar is split on its literal delimiters. A dataset name or
// additional info that itself contains one of the delimiters (or a dot) will
// not decode.
package naming
