package rpm

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/utils"
	"github.com/sassoftware/go-rpmutils"
)

// ParsePackage reads an RPM file back and extracts its metadata
func ParsePackage(path string) (*models.PackageInfo, error) {
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksums: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}

	info := &models.PackageInfo{
		Filename:          filepath.Base(path),
		Size:              checksums.Size,
		SHA256Sum:         checksums.SHA256,
		Name:              getStringTag(rpm, rpmutils.NAME),
		Version:           getStringTag(rpm, rpmutils.VERSION),
		Release:           getStringTag(rpm, rpmutils.RELEASE),
		Arch:              getStringTag(rpm, rpmutils.ARCH),
		Summary:           getStringTag(rpm, rpmutils.SUMMARY),
		License:           getStringTag(rpm, rpmutils.LICENSE),
		URL:               getStringTag(rpm, rpmutils.URL),
		PayloadCompressor: getStringTag(rpm, tagPayloadCompressor),
		Requires: dependencies(rpm,
			rpmutils.REQUIRENAME, tagRequireFlags, tagRequireVersion, true),
		Provides: dependencies(rpm,
			tagProvideName, tagProvideFlags, tagProvideVersion, false),
		Files: fileNames(rpm),
	}

	return info, nil
}

// ListPayload lists the members of the payload archive of an RPM file.
func ListPayload(path string) ([]models.PayloadEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}
	compression, err := utils.ParsePayloadCompressor(getStringTag(rpm, tagPayloadCompressor))
	if err != nil {
		return nil, err
	}

	offset, err := payloadOffset(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	r, err := utils.NewPayloadReader(bufio.NewReader(f), compression)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return readCpio(r)
}

// payloadOffset skips the lead, the signature header with its padding and
// the main header.
func payloadOffset(r io.ReaderAt) (int64, error) {
	offset := int64(leadSize)
	intro := make([]byte, 16)
	for i := 0; i < 2; i++ {
		if _, err := r.ReadAt(intro, offset); err != nil {
			return 0, fmt.Errorf("failed to read header at %d: %w", offset, err)
		}
		if !bytes.Equal(intro[:4], headerMagic) {
			return 0, fmt.Errorf("bad header magic at %d", offset)
		}
		nindex := binary.BigEndian.Uint32(intro[8:12])
		hsize := binary.BigEndian.Uint32(intro[12:16])
		offset += 16 + 16*int64(nindex) + int64(hsize)

		if i == 0 {
			if rem := offset % 8; rem != 0 {
				offset += 8 - rem
			}
		}
	}
	return offset, nil
}

// dependencies renders name/flags/version triples as "name op version".
// rpmlib() requirements are dropped when skipRPMLib is set.
func dependencies(rpm *rpmutils.Rpm, nameTag, flagsTag, versionTag int, skipRPMLib bool) []string {
	names := getStringSliceTag(rpm, nameTag)
	flags := getIntSliceTag(rpm, flagsTag)
	versions := getRawStringSliceTag(rpm, versionTag)

	var result []string
	for i, name := range names {
		var flag int64
		if i < len(flags) {
			flag = flags[i]
		}
		if skipRPMLib && flag&senseRPMLib != 0 {
			continue
		}

		dep := name
		if i < len(versions) && versions[i] != "" {
			dep += " " + senseOp(flag) + " " + versions[i]
		}
		result = append(result, dep)
	}
	return result
}

func senseOp(flag int64) string {
	var op string
	if flag&senseLess != 0 {
		op += "<"
	}
	if flag&senseGreater != 0 {
		op += ">"
	}
	if flag&senseEqual != 0 {
		op += "="
	}
	return op
}

func fileNames(rpm *rpmutils.Rpm) []string {
	dirs := getStringSliceTag(rpm, tagDirNames)
	bases := getStringSliceTag(rpm, tagBaseNames)
	indexes := getIntSliceTag(rpm, tagDirIndexes)

	var files []string
	for i, base := range bases {
		if i >= len(indexes) || int(indexes[i]) >= len(dirs) {
			break
		}
		files = append(files, dirs[indexes[i]]+base)
	}
	return files
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}

	return ""
}

// getIntSliceTag safely gets an integer array tag from RPM
func getIntSliceTag(rpm *rpmutils.Rpm, tag int) []int64 {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}

	var result []int64
	switch v := val.(type) {
	case []int:
		for _, i := range v {
			result = append(result, int64(i))
		}
	case []int32:
		for _, i := range v {
			result = append(result, int64(i))
		}
	case []uint32:
		for _, i := range v {
			result = append(result, int64(i))
		}
	case []int64:
		result = v
	case []uint64:
		for _, i := range v {
			result = append(result, int64(i))
		}
	}
	return result
}

// getRawStringSliceTag keeps empty elements so the result stays aligned
// with sibling tags.
func getRawStringSliceTag(rpm *rpmutils.Rpm, tag int) []string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}
	slice, _ := val.([]string)
	return slice
}

// getStringSliceTag safely gets a string slice tag from RPM
func getStringSliceTag(rpm *rpmutils.Rpm, tag int) []string {
	if slice := getRawStringSliceTag(rpm, tag); slice != nil {
		// Filter out empty strings
		var result []string
		for _, s := range slice {
			s = strings.TrimSpace(s)
			if s != "" {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
