// Package backup encodes the whole ledger state as a single backup file and
// reads it back, refusing anything that does not validate.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/domain"
)

const (
	Format  = "bakery-ledger-backup"
	Version = 1

	// MaxDecodedSize caps decompressed backups.
	MaxDecodedSize = 64 << 20
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Document is the on-disk envelope around the state.
type Document struct {
	Format     string       `json:"format"`
	Version    int          `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Data       domain.State `json:"data"`
}

// Artifact is one encoded backup ready to download or upload.
type Artifact struct {
	Name        string
	ContentType string
	Compressed  bool
	Body        []byte
}

type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

func (c *Codec) Close() {
	c.decoder.Close()
	_ = c.encoder.Close()
}

// Encode serializes state. Compressed artifacts are zstd frames around the
// same JSON document.
func (c *Codec) Encode(state domain.State, exportedAt time.Time, compress bool) (Artifact, error) {
	state.Normalize()
	body, err := json.MarshalIndent(Document{
		Format:     Format,
		Version:    Version,
		ExportedAt: exportedAt.UTC(),
		Data:       state,
	}, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("marshal backup: %w", err)
	}

	artifact := Artifact{
		Name:        FileName(exportedAt, compress),
		ContentType: "application/json",
		Compressed:  compress,
		Body:        body,
	}
	if compress {
		artifact.Body = c.encoder.EncodeAll(body, nil)
		artifact.ContentType = "application/zstd"
	}
	return artifact, nil
}

// Decode parses a plain or zstd-compressed backup and validates it. Any
// failure is reported as an invalid backup and no partial state is returned.
func (c *Codec) Decode(raw []byte) (domain.State, error) {
	if bytes.HasPrefix(raw, zstdMagic) {
		plain, err := c.decoder.DecodeAll(raw, nil)
		if err != nil {
			return domain.State{}, apperror.NewInvalidBackup("backup is not a readable zstd file").WithCause(err)
		}
		raw = plain
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return domain.State{}, apperror.NewInvalidBackup("backup is not valid JSON").WithCause(err)
	}
	if dec.More() {
		return domain.State{}, apperror.NewInvalidBackup("backup has trailing data")
	}
	if doc.Format != Format {
		return domain.State{}, apperror.NewInvalidBackup("not a bakery ledger backup").WithDetail("format", doc.Format)
	}
	if doc.Version < 1 || doc.Version > Version {
		return domain.State{}, apperror.NewInvalidBackup("unsupported backup version").WithDetail("version", doc.Version)
	}

	state := doc.Data
	state.Normalize()
	if err := Validate(&state); err != nil {
		return domain.State{}, err
	}
	return state, nil
}

func FileName(at time.Time, compressed bool) string {
	name := "bakery-backup-" + at.Format("20060102-150405") + ".json"
	if compressed {
		name += ".zst"
	}
	return name
}
