package beefi

import (
	"github.com/samber/lo"
)

// configKey is a comparable projection of Metadata, used to detect
// whether a batch mixes wireless configurations (bandwidth/antenna/
// codebook/feedback-type changes mid-stream).
type configKey struct {
	BandwidthMHz uint16
	NrIndex      uint8
	NcIndex      uint8
	CodebookInfo uint8
	FeedbackType uint8
}

// timestampToken identifies a record by its two nominally-unique fields;
// a repeat of this pair is the wireless-capture analog of a sonar ping
// seen twice.
type timestampToken struct {
	Timestamp float64
	Token     uint8
}

// BatchQuality is a diagnostic summary over a decoded BFA stream. It is
// never part of the wire contract or the Parquet schema -- it is a
// caller-facing report only.
type BatchQuality struct {
	MinToken         uint8
	MaxToken         uint8
	ConsistentSchema bool
	Duplicates       []DuplicateRecord
}

// DuplicateRecord names a (timestamp, token) pair observed more than once
// in a batch.
type DuplicateRecord struct {
	Timestamp float64
	Token     uint8
}

// AssessBatch computes a BatchQuality summary over a closed sequence of
// BFA records. Modeled on the teacher's ping-stream QA pass: token range
// sanity, schema consistency across the batch, and duplicate detection --
// here over capture tokens/timestamps rather than sonar ping counts.
func AssessBatch(records []BfaRecord) BatchQuality {
	if len(records) == 0 {
		return BatchQuality{}
	}

	tokens := make([]uint8, len(records))
	keys := make([]timestampToken, len(records))
	configs := make([]configKey, len(records))

	for i, rec := range records {
		tokens[i] = rec.Token
		keys[i] = timestampToken{Timestamp: rec.Timestamp, Token: rec.Token}
		configs[i] = configKey{
			BandwidthMHz: rec.Metadata.BandwidthMHz,
			NrIndex:      rec.Metadata.NrIndex,
			NcIndex:      rec.Metadata.NcIndex,
			CodebookInfo: rec.Metadata.CodebookInfo,
			FeedbackType: rec.Metadata.FeedbackType,
		}
	}

	duplicateKeys := lo.FindDuplicates(keys)
	duplicates := make([]DuplicateRecord, 0, len(duplicateKeys))
	for _, d := range duplicateKeys {
		duplicates = append(duplicates, DuplicateRecord{Timestamp: d.Timestamp, Token: d.Token})
	}

	distinctConfigs := lo.Union(configs)

	return BatchQuality{
		MinToken:         lo.Min(tokens),
		MaxToken:         lo.Max(tokens),
		ConsistentSchema: len(distinctConfigs) == 1,
		Duplicates:       duplicates,
	}
}
