package rpm

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/utils"
	"github.com/sirupsen/logrus"
)

const rpmVersion = "4.16.0"

type rpmlibRequirement struct {
	name    string
	version string
}

var (
	baseRPMLib = []rpmlibRequirement{
		{"rpmlib(CompressedFileNames)", "3.0.4-1"},
		{"rpmlib(FileDigests)", "4.6.0-1"},
		{"rpmlib(PayloadFilesHavePrefix)", "4.0-1"},
	}
	capsRPMLib = rpmlibRequirement{"rpmlib(FileCaps)", "4.6.1-1"}
	zstdRPMLib = rpmlibRequirement{"rpmlib(PayloadIsZstd)", "5.4.18-1"}
	xzRPMLib   = rpmlibRequirement{"rpmlib(PayloadIsXz)", "5.2-1"}
)

type scriptTags struct {
	body, prog, flags int32
}

var scriptTagsBySlot = map[models.ScriptSlot]scriptTags{
	models.PreInstall:    {tagPreIn, tagPreInProg, tagPreInFlags},
	models.PostInstall:   {tagPostIn, tagPostInProg, tagPostInFlags},
	models.PreUninstall:  {tagPreUn, tagPreUnProg, tagPreUnFlags},
	models.PostUninstall: {tagPostUn, tagPostUnProg, tagPostUnFlags},
	models.PreTrans:      {tagPreTrans, tagPreTransProg, tagPreTransFlags},
	models.PostTrans:     {tagPostTrans, tagPostTransProg, tagPostTransFlags},
	models.PreUntrans:    {tagPreUntrans, tagPreUntransProg, tagPreUntransFlags},
	models.PostUntrans:   {tagPostUntrans, tagPostUntransProg, tagPostUntransFlags},
}

// Writer produces binary RPM packages.
type Writer struct {
	Compression models.Compression
	// SourceDate, when set, is used as build time and caps file mtimes.
	SourceDate *uint32
	BuildHost  string

	now func() time.Time
}

// NewWriter creates a new RPM writer
func NewWriter(compression models.Compression, sourceDate *uint32) *Writer {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return &Writer{
		Compression: compression,
		SourceDate:  sourceDate,
		BuildHost:   host,
		now:         time.Now,
	}
}

type payloadFile struct {
	asset  models.ResolvedAsset
	mode   uint32
	mtime  uint32
	data   []byte
	digest string
}

// WritePackage writes pkg to path, replacing any existing file only once
// the package is complete.
func (w *Writer) WritePackage(ctx context.Context, pkg *models.Package, path string) error {
	var buf bytes.Buffer
	if err := w.Write(ctx, pkg, &buf); err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return &models.Error{Type: models.ErrFileOp, Subject: path, Err: err}
	}

	logrus.Infof("Wrote %s (%d bytes)", path, buf.Len())
	return nil
}

// Write serializes pkg as lead, signature, header and payload.
func (w *Writer) Write(ctx context.Context, pkg *models.Package, out io.Writer) error {
	files, err := w.loadFiles(ctx, pkg.Files)
	if err != nil {
		return err
	}

	payload, payloadSize, err := w.buildPayload(files)
	if err != nil {
		return models.PackageWriteError(pkg.Name, err)
	}

	hdr := w.buildHeader(pkg, files, payload).marshal(headerImmutable)
	sig := buildSignature(hdr, payload, payloadSize).marshal(headerSignatures)
	if rem := len(sig) % 8; rem != 0 {
		sig = append(sig, make([]byte, 8-rem)...)
	}

	for _, part := range [][]byte{lead(pkg), sig, hdr, payload} {
		if _, err := out.Write(part); err != nil {
			return models.PackageWriteError(pkg.Name, err)
		}
	}

	logrus.Debugf("Package %s: header %d bytes, payload %d bytes (%d uncompressed)",
		pkg.Name, len(hdr), len(payload), payloadSize)
	return nil
}

func (w *Writer) loadFiles(ctx context.Context, assets []models.ResolvedAsset) ([]payloadFile, error) {
	files := make([]payloadFile, 0, len(assets))
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(asset.Dest, "/") {
			return nil, models.PackageWriteError(asset.Dest, models.ErrInvalidDestination)
		}

		info, err := os.Stat(asset.Source)
		if err != nil {
			return nil, &models.Error{Type: models.ErrFileOp, Subject: asset.Source, Err: err}
		}
		data, err := os.ReadFile(asset.Source)
		if err != nil {
			return nil, &models.Error{Type: models.ErrFileOp, Subject: asset.Source, Err: err}
		}

		mode := asset.Options.Mode
		if mode == 0 {
			mode = uint32(info.Mode().Perm())
		}
		if mode&models.ModeTypeMask == 0 {
			mode |= models.ModeRegular
		}

		mtime := uint32(info.ModTime().Unix())
		if w.SourceDate != nil && mtime > *w.SourceDate {
			mtime = *w.SourceDate
		}

		files = append(files, payloadFile{
			asset:  asset,
			mode:   mode,
			mtime:  mtime,
			data:   data,
			digest: utils.CalculateChecksum(data, "sha256"),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].asset.Dest < files[j].asset.Dest
	})
	return files, nil
}

func (w *Writer) buildPayload(files []payloadFile) ([]byte, int64, error) {
	var compressed bytes.Buffer
	zw, err := utils.NewPayloadWriter(&compressed, w.Compression)
	if err != nil {
		return nil, 0, err
	}

	archive := &cpioWriter{w: zw}
	for i, f := range files {
		err := archive.writeEntry(cpioEntry{
			ino:   uint32(i + 1),
			mode:  f.mode,
			mtime: f.mtime,
			name:  "." + f.asset.Dest,
			data:  f.data,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to write payload entry %s: %w", f.asset.Dest, err)
		}
	}
	if err := archive.close(); err != nil {
		return nil, 0, err
	}
	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to finish payload compression: %w", err)
	}

	return compressed.Bytes(), archive.n, nil
}

func (w *Writer) buildTime() uint32 {
	if w.SourceDate != nil {
		return *w.SourceDate
	}
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	return uint32(now().Unix())
}

func (w *Writer) buildHeader(pkg *models.Package, files []payloadFile, payload []byte) *header {
	h := newHeader()

	h.addStringArray(headerI18NTable, []string{"C"})
	h.addString(tagName, pkg.Name)
	h.addString(tagVersion, pkg.Version)
	h.addString(tagRelease, pkg.Release)
	if pkg.Epoch > 0 {
		h.addInt32(tagEpoch, pkg.Epoch)
	}
	h.addI18NString(tagSummary, pkg.Summary)
	h.addI18NString(tagDescription, pkg.Summary)
	h.addI18NString(tagGroup, "Unspecified")
	h.addInt32(tagBuildTime, w.buildTime())
	h.addString(tagBuildHost, w.BuildHost)
	h.addString(tagLicense, pkg.License)
	if pkg.Vendor != "" {
		h.addString(tagVendor, pkg.Vendor)
	}
	if pkg.URL != "" {
		h.addString(tagURL, pkg.URL)
	}
	h.addString(tagOS, "linux")
	h.addString(tagArch, pkg.Arch)
	h.addString(tagRPMVersion, rpmVersion)

	w.addScripts(h, pkg.Scripts)
	hasCaps := addFiles(h, files)

	rpmlib := append([]rpmlibRequirement{}, baseRPMLib...)
	if hasCaps {
		rpmlib = append(rpmlib, capsRPMLib)
	}
	switch w.Compression {
	case models.CompressZstd:
		rpmlib = append(rpmlib, zstdRPMLib)
	case models.CompressXz:
		rpmlib = append(rpmlib, xzRPMLib)
	}
	addRequires(h, pkg.Requires, rpmlib)

	provides := selfProvide(pkg)
	addDependencies(h, provides, tagProvideName, tagProvideFlags, tagProvideVersion)
	addDependencies(h, pkg.Conflicts, tagConflictName, tagConflictFlags, tagConflictVersion)
	addDependencies(h, pkg.Obsoletes, tagObsoleteName, tagObsoleteFlags, tagObsoleteVersion)

	compressor, flags := utils.PayloadCompressor(w.Compression)
	h.addString(tagPayloadFormat, "cpio")
	h.addString(tagPayloadCompressor, compressor)
	if flags != "" {
		h.addString(tagPayloadFlags, flags)
	}
	h.addStringArray(tagPayloadDigest, []string{utils.CalculateChecksum(payload, "sha256")})
	h.addInt32(tagPayloadDigestAlgo, hashAlgoSHA256)

	return h
}

func (w *Writer) addScripts(h *header, scripts map[models.ScriptSlot]models.Scriptlet) {
	for _, slot := range models.ScriptSlots {
		script, ok := scripts[slot]
		if !ok || script.Body == "" {
			continue
		}
		tags := scriptTagsBySlot[slot]
		h.addString(tags.body, script.Body)

		prog := script.Prog
		if len(prog) == 0 {
			prog = []string{"/bin/sh"}
		}
		h.addStringArray(tags.prog, prog)
		if script.Flags != 0 {
			h.addInt32(tags.flags, script.Flags)
		}
	}
}

// addFiles records per-file tags and reports whether any file carries
// capabilities.
func addFiles(h *header, files []payloadFile) bool {
	n := len(files)
	var (
		sizes     = make([]uint32, n)
		modes     = make([]uint16, n)
		rdevs     = make([]uint16, n)
		mtimes    = make([]uint32, n)
		digests   = make([]string, n)
		linktos   = make([]string, n)
		flags     = make([]uint32, n)
		users     = make([]string, n)
		groups    = make([]string, n)
		devices   = make([]uint32, n)
		inodes    = make([]uint32, n)
		langs     = make([]string, n)
		caps      = make([]string, n)
		dirIndex  = make([]uint32, n)
		baseNames = make([]string, n)
		dirNames  []string
		hasCaps   bool
		total     uint32
	)
	dirs := make(map[string]uint32)

	for i, f := range files {
		sizes[i] = uint32(len(f.data))
		total += sizes[i]
		modes[i] = uint16(f.mode)
		mtimes[i] = f.mtime
		digests[i] = f.digest
		users[i] = f.asset.Options.User
		groups[i] = f.asset.Options.Group
		devices[i] = 1
		inodes[i] = uint32(i + 1)
		caps[i] = f.asset.Options.Caps
		if caps[i] != "" {
			hasCaps = true
		}

		if f.asset.Options.Config {
			flags[i] |= fileConfig
		}
		if f.asset.Options.ConfigNoReplace {
			flags[i] |= fileConfig | fileNoReplace
		}
		if f.asset.Options.Doc {
			flags[i] |= fileDoc
		}

		dir, base := path.Split(f.asset.Dest)
		idx, ok := dirs[dir]
		if !ok {
			idx = uint32(len(dirNames))
			dirs[dir] = idx
			dirNames = append(dirNames, dir)
		}
		dirIndex[i] = idx
		baseNames[i] = base
	}

	h.addInt32(tagSize, total)
	if n == 0 {
		return false
	}

	h.addInt32(tagFileSizes, sizes...)
	h.addInt16(tagFileModes, modes...)
	h.addInt16(tagFileRDevs, rdevs...)
	h.addInt32(tagFileMTimes, mtimes...)
	h.addStringArray(tagFileDigests, digests)
	h.addStringArray(tagFileLinkTos, linktos)
	h.addInt32(tagFileFlags, flags...)
	h.addStringArray(tagFileUserName, users)
	h.addStringArray(tagFileGroupName, groups)
	h.addInt32(tagFileDevices, devices...)
	h.addInt32(tagFileINodes, inodes...)
	h.addStringArray(tagFileLangs, langs)
	h.addInt32(tagDirIndexes, dirIndex...)
	h.addStringArray(tagBaseNames, baseNames)
	h.addStringArray(tagDirNames, dirNames)
	h.addInt32(tagFileDigestAlgo, hashAlgoSHA256)
	if hasCaps {
		h.addStringArray(tagFileCaps, caps)
	}
	return hasCaps
}

func addRequires(h *header, requires []models.Dependency, rpmlib []rpmlibRequirement) {
	var (
		names    []string
		flags    []uint32
		versions []string
	)
	for _, r := range rpmlib {
		names = append(names, r.name)
		flags = append(flags, senseRPMLib|senseLess|senseEqual)
		versions = append(versions, r.version)
	}
	for _, d := range requires {
		names = append(names, d.Name)
		flags = append(flags, d.Sense())
		versions = append(versions, d.Version)
	}

	h.addStringArray(tagRequireName, names)
	h.addInt32(tagRequireFlags, flags...)
	h.addStringArray(tagRequireVersion, versions)
}

func addDependencies(h *header, deps []models.Dependency, nameTag, flagsTag, versionTag int32) {
	if len(deps) == 0 {
		return
	}
	names := make([]string, len(deps))
	flags := make([]uint32, len(deps))
	versions := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
		flags[i] = d.Sense()
		versions[i] = d.Version
	}
	h.addStringArray(nameTag, names)
	h.addInt32(flagsTag, flags...)
	h.addStringArray(versionTag, versions)
}

// selfProvide appends "name = EVR" unless the package already provides
// its own name.
func selfProvide(pkg *models.Package) []models.Dependency {
	provides := append([]models.Dependency{}, pkg.Provides...)
	for _, p := range provides {
		if p.Name == pkg.Name {
			return provides
		}
	}
	return append(provides, models.Dependency{
		Name:    pkg.Name,
		Op:      models.OpEqual,
		Version: pkg.EVR(),
	})
}

func buildSignature(hdr, payload []byte, payloadSize int64) *header {
	sig := newHeader()
	sig.addString(sigTagSHA1, utils.CalculateChecksum(hdr, "sha1"))
	sig.addString(sigTagSHA256, utils.CalculateChecksum(hdr, "sha256"))
	sig.addInt32(sigTagSize, uint32(len(hdr)+len(payload)))
	sig.addBin(sigTagMD5, utils.Digest(append(append([]byte{}, hdr...), payload...), "md5"))
	sig.addInt32(sigTagPayloadSize, uint32(payloadSize))
	return sig
}

func lead(pkg *models.Package) []byte {
	var buf bytes.Buffer
	buf.Write(leadMagic)
	buf.Write([]byte{3, 0})
	binary.Write(&buf, binary.BigEndian, uint16(0)) // binary package
	binary.Write(&buf, binary.BigEndian, uint16(0))

	name := make([]byte, 66)
	copy(name[:65], pkg.Name+"-"+pkg.Version+"-"+pkg.Release)
	buf.Write(name)

	binary.Write(&buf, binary.BigEndian, uint16(1)) // linux
	binary.Write(&buf, binary.BigEndian, uint16(5)) // header-style signature
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}
