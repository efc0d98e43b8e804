package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/nwaples/rardecode/v2"

	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/models"
)

// ArchiveKind identifies a packed payload by its magic bytes.
type ArchiveKind string

const (
	ArchiveNone ArchiveKind = ""
	ArchiveZip  ArchiveKind = "zip"
	ArchiveRar  ArchiveKind = "rar"
)

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// ErrNoSubtitleInArchive is returned when an archive holds no supported subtitle file.
var ErrNoSubtitleInArchive = errors.New("archive contains no supported subtitle file")

// DetectArchive sniffs the archive format of content.
func DetectArchive(content []byte) ArchiveKind {
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return ArchiveZip
	case bytes.HasPrefix(content, rarMagic):
		return ArchiveRar
	default:
		return ArchiveNone
	}
}

// DefaultSubtitleUnpacker unpacks zip and rar payloads, bounding every extracted entry.
type DefaultSubtitleUnpacker struct {
	maxEntryBytes int64
}

// NewSubtitleUnpacker creates an unpacker; maxEntryBytes <= 0 disables the bound.
func NewSubtitleUnpacker(maxEntryBytes int64) SubtitleUnpacker {
	return &DefaultSubtitleUnpacker{maxEntryBytes: maxEntryBytes}
}

// Unpack picks the entry named for the requested language tier, or else the
// first entry with a supported subtitle extension.
func (u *DefaultSubtitleUnpacker) Unpack(sub *models.DownloadedSubtitle, priority models.LanguagePriority) (*models.DownloadedSubtitle, error) {
	logger := config.GetLogger()

	kind := DetectArchive(sub.Content)
	if kind == ArchiveNone {
		return sub, nil
	}

	logger.Debug().
		Str("archive", string(kind)).
		Str("fileName", sub.FileName).
		Int("size", len(sub.Content)).
		Msg("Unpacking subtitle archive")

	var (
		name    string
		content []byte
		err     error
	)
	switch kind {
	case ArchiveZip:
		name, content, err = u.extractFromZip(sub.Content, priority)
	case ArchiveRar:
		name, content, err = u.extractFromRar(sub.Content, priority)
	}
	if err != nil {
		return nil, fmt.Errorf("unpack %s archive %q: %w", kind, sub.FileName, err)
	}

	logger.Debug().
		Str("entry", name).
		Int("size", len(content)).
		Msg("Extracted subtitle from archive")

	return &models.DownloadedSubtitle{
		Content:            content,
		ProviderHintFormat: sub.ProviderHintFormat,
		FileName:           name,
		ContentType:        getContentTypeFromFilename(name),
	}, nil
}

func (u *DefaultSubtitleUnpacker) extractFromZip(content []byte, priority models.LanguagePriority) (string, []byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	var chosen *zip.File
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() || !IsSubtitleFile(file.Name) {
			continue
		}
		if HasLanguageMarker(file.Name, priority) {
			chosen = file
			break
		}
		if chosen == nil {
			chosen = file
		}
	}
	if chosen == nil {
		return "", nil, fmt.Errorf("%w (searched %d files)", ErrNoSubtitleInArchive, len(zipReader.File))
	}

	rc, err := chosen.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open file %s in ZIP: %w", chosen.Name, err)
	}
	defer rc.Close()

	data, err := u.readEntry(rc, chosen.Name)
	if err != nil {
		return "", nil, err
	}
	return path.Base(normalizeName(chosen.Name)), data, nil
}

// extractFromRar streams the archive once. RAR entries can only be read in
// order, so the first supported entry is buffered until a language match shows up.
func (u *DefaultSubtitleUnpacker) extractFromRar(content []byte, priority models.LanguagePriority) (string, []byte, error) {
	rarReader, err := rardecode.NewReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open RAR archive: %w", err)
	}

	var (
		fallbackName string
		fallbackData []byte
		searched     int
	)
	for {
		header, err := rarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("failed to read RAR archive: %w", err)
		}
		searched++
		if header.IsDir || !IsSubtitleFile(header.Name) {
			continue
		}

		matches := HasLanguageMarker(header.Name, priority)
		if !matches && fallbackData != nil {
			continue
		}

		data, err := u.readEntry(rarReader, header.Name)
		if err != nil {
			return "", nil, err
		}
		name := path.Base(normalizeName(header.Name))
		if matches {
			return name, data, nil
		}
		fallbackName, fallbackData = name, data
	}

	if fallbackData == nil {
		return "", nil, fmt.Errorf("%w (searched %d files)", ErrNoSubtitleInArchive, searched)
	}
	return fallbackName, fallbackData, nil
}

func (u *DefaultSubtitleUnpacker) readEntry(r io.Reader, name string) ([]byte, error) {
	if u.maxEntryBytes > 0 {
		r = io.LimitReader(r, u.maxEntryBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from archive: %w", name, err)
	}
	if u.maxEntryBytes > 0 && int64(len(data)) > u.maxEntryBytes {
		return nil, fmt.Errorf("archive entry %s exceeds %d bytes", name, u.maxEntryBytes)
	}
	return data, nil
}
