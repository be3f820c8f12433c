package processor

import (
	"bytes"
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"shrink/pkg/imgutil"
	"shrink/pkg/jpegseg"
)

type ExifAnalysis struct {
	Orientation int
	APP1Bytes   int
	GPS         []string
	Device      []string
	Timestamps  []string
}

func analyzeExif(data []byte) (ExifAnalysis, error) {
	analysis := ExifAnalysis{
		APP1Bytes: len(jpegseg.GetExif(data)),
	}
	if o, ok := jpegseg.Orientation(data); ok {
		analysis.Orientation = o
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return analysis, nil
		}
		return analysis, err
	}

	for _, tag := range tags {
		name := tag.TagName
		entry := name + "=" + tag.FormattedFirst

		switch {
		case strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS"):
			analysis.GPS = append(analysis.GPS, entry)
		case name == "Make" || name == "Model" || strings.Contains(strings.ToLower(name), "serial"):
			analysis.Device = append(analysis.Device, entry)
		case name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime":
			analysis.Timestamps = append(analysis.Timestamps, entry)
		}
	}

	return analysis, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

func scanData(data []byte, kind imgutil.Kind) ([]ScanDetail, error) {
	if kind != imgutil.KindJPEG {
		return nil, nil
	}

	analysis, err := analyzeExif(data)
	if err != nil {
		return nil, err
	}
	return detailsFromExif(analysis), nil
}

func detailsFromExif(analysis ExifAnalysis) []ScanDetail {
	details := []ScanDetail{}
	if analysis.APP1Bytes > 0 {
		details = append(details, ScanDetail{
			Category: "APP1",
			Values:   []string{fmt.Sprintf("%d bytes", analysis.APP1Bytes)},
		})
	}
	if analysis.Orientation > 1 {
		details = append(details, ScanDetail{
			Category: "Orientation",
			Values:   []string{describeOrientation(analysis.Orientation)},
		})
	}
	if len(analysis.GPS) > 0 {
		details = append(details, ScanDetail{Category: "GPS", Values: analysis.GPS})
	}
	if len(analysis.Device) > 0 {
		details = append(details, ScanDetail{Category: "Device Model", Values: analysis.Device})
	}
	if len(analysis.Timestamps) > 0 {
		details = append(details, ScanDetail{Category: "Timestamp", Values: analysis.Timestamps})
	}
	return details
}

func describeOrientation(orientation int) string {
	t := jpegseg.ParseOrientation(orientation)
	parts := []string{fmt.Sprintf("%d", orientation)}
	if t.Rotate != 0 {
		parts = append(parts, fmt.Sprintf("rotate %d", t.Rotate))
	}
	if t.ScaleX < 0 {
		parts = append(parts, "flip horizontal")
	}
	if t.ScaleY < 0 {
		parts = append(parts, "flip vertical")
	}
	return strings.Join(parts, ", ")
}
