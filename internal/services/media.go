package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Devin-147/reconsolidator-app-sub000/internal/config"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/models"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/narrative"
	"github.com/Devin-147/reconsolidator-app-sub000/internal/storage"

	"go.uber.org/zap"
)

// ReversedClip is the output of the reversal pipeline for one narrative.
type ReversedClip struct {
	OriginalIndex int    `json:"originalIndex"`
	VideoURL      string `json:"videoUrl"`
}

// MediaService runs the reversal pipeline: it pulls the long-form narration
// videos out of the object store, trims and reverses each with ffmpeg and
// uploads the short clips back.
type MediaService struct {
	log   *zap.Logger
	store storage.ObjectStore
}

func NewMediaService(log *zap.Logger, store storage.ObjectStore) *MediaService {
	return &MediaService{log: log, store: store}
}

// GenerateReversedClips processes the given 1-based narrative indices for
// one user and treatment. Every source video must exist before any work
// starts; a missing source fails the whole batch with no partial result.
func (m *MediaService) GenerateReversedClips(ctx context.Context, userEmail string, treatmentNumber int, indices []int) ([]ReversedClip, error) {
	// Verify all sources up front so we never leave a half-processed batch.
	for _, idx := range indices {
		key := narrative.SourceVideoKey(userEmail, treatmentNumber, idx)
		exists, err := m.store.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("source video %d not found for %s_t%d", idx, userEmail, treatmentNumber)
		}
	}

	workDir, err := os.MkdirTemp("", "reversal-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	clips := make([]ReversedClip, 0, len(indices))
	for _, idx := range indices {
		clip, err := m.reverseOne(ctx, workDir, userEmail, treatmentNumber, idx)
		if err != nil {
			m.log.Error("Reversal pipeline failed",
				zap.String("userEmail", userEmail),
				zap.Int("treatment", treatmentNumber),
				zap.Int("index", idx),
				zap.Error(err),
			)
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (m *MediaService) reverseOne(ctx context.Context, workDir, userEmail string, treatmentNumber, idx int) (ReversedClip, error) {
	srcKey := narrative.SourceVideoKey(userEmail, treatmentNumber, idx)
	src, err := m.store.Get(ctx, srcKey)
	if err != nil {
		return ReversedClip{}, err
	}
	defer src.Close()

	inPath := filepath.Join(workDir, fmt.Sprintf("in_%d.mp4", idx))
	outPath := filepath.Join(workDir, fmt.Sprintf("out_%d.mp4", idx))

	inFile, err := os.Create(inPath)
	if err != nil {
		return ReversedClip{}, err
	}
	if _, err := inFile.ReadFrom(src); err != nil {
		inFile.Close()
		return ReversedClip{}, err
	}
	if err := inFile.Close(); err != nil {
		return ReversedClip{}, err
	}

	// Trim to the last few seconds and reverse both streams.
	cmd := exec.CommandContext(ctx, config.Conf.Media.FFmpegPath,
		"-sseof", fmt.Sprintf("-%d", models.ReversalTargetSeconds),
		"-i", inPath,
		"-vf", "reverse",
		"-af", "areverse",
		"-y", outPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return ReversedClip{}, fmt.Errorf("ffmpeg failed: %s: %s", err, string(output))
	}

	out, err := os.Open(outPath)
	if err != nil {
		return ReversedClip{}, err
	}
	defer out.Close()

	clipKey := narrative.ReversedClipKey(userEmail, treatmentNumber, idx)
	if err := m.store.Put(ctx, clipKey, out); err != nil {
		return ReversedClip{}, err
	}

	return ReversedClip{
		OriginalIndex: idx,
		VideoURL:      m.store.PublicURL(clipKey),
	}, nil
}

// DeleteTreatmentMedia removes every stored object for one user and
// treatment. Failures are logged and do not abort the purge; storage cleanup
// is best-effort once the database rows are gone.
func (m *MediaService) DeleteTreatmentMedia(ctx context.Context, userID uint, userEmail string, treatmentNumber int) {
	var keys []string
	for i := 0; i < models.NarrationCount; i++ {
		keys = append(keys, narrative.NarrationObjectKey(userID, treatmentNumber, i))
	}
	for i := 1; i <= models.NarrationCount; i++ {
		keys = append(keys, narrative.SourceVideoKey(userEmail, treatmentNumber, i))
		keys = append(keys, narrative.ReversedClipKey(userEmail, treatmentNumber, i))
	}

	for _, key := range keys {
		if err := m.store.Delete(ctx, key); err != nil && err != storage.ErrNotFound {
			m.log.Warn("Failed to delete media object", zap.String("key", key), zap.Error(err))
		}
	}
}
