package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

const localUser = "local"

// readSnapshot loads an exported snapshot. Files ending in .yaml or .yml are
// read as YAML with the same keys as the JSON export.
func readSnapshot(path string) (*domain.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml snapshot: %w", err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("convert yaml snapshot: %w", err)
		}
	}

	snap := new(domain.Snapshot)
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.FormatVersion != 0 && snap.FormatVersion != domain.SnapshotFormatVersion {
		return nil, fmt.Errorf("%w: %d", domain.ErrSnapshotVersion, snap.FormatVersion)
	}
	return snap, nil
}

// loadEngine replays a snapshot into in-memory storage so the same streak
// service as the API answers the queries. A non-nil rest overrides the
// snapshot's rest days. The returned location is the snapshot's timezone.
func loadEngine(ctx context.Context, snap *domain.Snapshot, rest []int) (*services.StreakService, *time.Location, error) {
	sessions := repository.NewInMemorySessionRepository()
	exams := repository.NewInMemoryExamRepository()
	settingsRepo := repository.NewInMemorySettingsRepository()

	for _, src := range snap.Sessions {
		if src == nil || src.DeletedAt != nil {
			continue
		}
		s := *src
		s.UserID = localUser
		if err := sessions.Create(ctx, &s); err != nil {
			return nil, nil, fmt.Errorf("load session %s: %w", src.ID, err)
		}
	}

	for _, src := range snap.Exams {
		if src == nil || src.DeletedAt != nil {
			continue
		}
		e := *src
		e.UserID = localUser
		if err := exams.Create(ctx, &e); err != nil {
			return nil, nil, fmt.Errorf("load exam %s: %w", src.ID, err)
		}
	}

	settings := domain.DefaultSettings(localUser)
	if snap.Settings != nil {
		if err := settings.SetTimezone(snap.Settings.Timezone); err != nil {
			return nil, nil, err
		}
		if err := settings.SetRestDays(snap.Settings.RestDays); err != nil {
			return nil, nil, err
		}
	}
	if rest != nil {
		if err := settings.SetRestDays(rest); err != nil {
			return nil, nil, err
		}
	}
	if err := settingsRepo.Save(ctx, settings); err != nil {
		return nil, nil, err
	}

	return services.NewStreakService(sessions, exams, settingsRepo), settings.Location(), nil
}
