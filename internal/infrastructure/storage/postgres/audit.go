package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"tourreg/internal/core/id"
	"tourreg/internal/domain/audit"
)

// CompressionAlgo specifies how a payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which entries are compressed.
const DefaultCompressThreshold = 4 * 1024

var _ audit.Log = (*AuditLog)(nil)

// AuditLog stores validation audit entries in registry_audit.
// Payloads larger than the threshold are zstd-compressed.
type AuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditLog creates an audit log over txManager.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Compress returns the stored form of payload.
func (l *AuditLog) Compress(payload []byte) (plain, compressed []byte, algo CompressionAlgo) {
	if len(payload) <= l.compressThreshold {
		return payload, nil, CompressionNone
	}
	return nil, l.encoder.EncodeAll(payload, nil), CompressionZstd
}

// Decompress reverses Compress.
func (l *AuditLog) Decompress(plain, compressed []byte, algo CompressionAlgo) ([]byte, error) {
	if algo != CompressionZstd || len(compressed) == 0 {
		return plain, nil
	}
	out, err := l.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress audit payload: %w", err)
	}
	return out, nil
}

// Append inserts an entry, joining the transaction in ctx if any.
func (l *AuditLog) Append(ctx context.Context, e audit.Entry) error {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	plain, compressed, algo := l.Compress(e.Payload)

	_, err := l.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO registry_audit (
			id, record_id, action, operator_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		e.ID, e.RecordID, e.Action, e.OperatorID,
		nullJSON(plain), compressed, algo, e.CreatedAt,
	)
	return WrapErr("audit.append", err)
}

// History returns entries for a record, newest first.
func (l *AuditLog) History(ctx context.Context, recordID id.ID, limit int) ([]audit.Entry, error) {
	rows, err := l.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, record_id, action, operator_id,
			   payload, payload_compressed, compression_algo, created_at
		FROM registry_audit
		WHERE record_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, recordID, limit)
	if err != nil {
		return nil, WrapErr("audit.history", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e          audit.Entry
			plain      []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(&e.ID, &e.RecordID, &e.Action, &e.OperatorID,
			&plain, &compressed, &algo, &e.CreatedAt); err != nil {
			return nil, WrapErr("audit.history", fmt.Errorf("scan entry: %w", err))
		}
		payload, err := l.Decompress(plain, compressed, algo)
		if err != nil {
			return nil, WrapErr("audit.history", err)
		}
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	return entries, WrapErr("audit.history", rows.Err())
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
