package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/rules"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/snapshot"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const lastGeneratedKeyPrefix = "alerts:last_generated:"

type GenerationResult struct {
	LowStockAlerts   int
	ExpirationAlerts int
	TotalGenerated   int
	Breakdown        map[string]int
}

type GenerationStatus struct {
	ActiveRules    int
	LastGenerated  string
	AvailableTypes []string
}

// AlertGenerator runs one evaluation + dedup + persist cycle per branch.
type AlertGenerator struct {
	db     *gorm.DB
	reader snapshot.Reader
	store  *NotificationStore
	cache  *redis.Client
	now    func() time.Time
}

func NewAlertGenerator(db *gorm.DB, reader snapshot.Reader, store *NotificationStore, cache *redis.Client) *AlertGenerator {
	return &AlertGenerator{
		db:     db,
		reader: reader,
		store:  store,
		cache:  cache,
		now:    time.Now,
	}
}

// Generate evaluates every active rule against the branch snapshot, commits
// the deduplicated survivors, and reports what was actually inserted. A
// snapshot fetch failure aborts the run with nothing committed.
func (g *AlertGenerator) Generate(ctx context.Context, branchID string) (GenerationResult, error) {
	ruleSet, err := g.activeRules(ctx)

	if err != nil {
		return GenerationResult{}, err
	}

	now := g.now()

	// The evaluation passes are independent; run them concurrently and merge
	// before the single commit step.
	group, groupCtx := errgroup.WithContext(ctx)
	candidates := make([][]rules.GeneratedAlert, len(ruleSet))

	for i, rule := range ruleSet {
		i, rule := i, rule
		group.Go(func() error {
			alerts, err := rule.Evaluate(groupCtx, g.reader, branchID, now)

			if err != nil {
				return err
			}

			candidates[i] = alerts
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return GenerationResult{}, fmt.Errorf("evaluate alerts for branch %s: %w", branchID, err)
	}

	var merged []rules.GeneratedAlert
	for _, alerts := range candidates {
		merged = append(merged, alerts...)
	}

	committed, err := g.store.CommitAlerts(ctx, branchID, merged)

	if err != nil {
		return GenerationResult{}, err
	}

	result := GenerationResult{Breakdown: make(map[string]int)}

	for _, row := range committed {
		result.TotalGenerated++
		result.Breakdown[row.Type]++

		switch row.Type {
		case types.AlertLowStock, types.AlertOutOfStock:
			result.LowStockAlerts++
		case types.AlertExpiringSoon, types.AlertExpired:
			result.ExpirationAlerts++
		}
	}

	g.recordLastGenerated(ctx, branchID, now)
	g.escalateCritical(ctx, branchID, committed)

	return result, nil
}

// Status reports what the generation probe exposes: how many rules would run,
// when the branch last generated, and the full alert type vocabulary.
func (g *AlertGenerator) Status(ctx context.Context, branchID string) (GenerationStatus, error) {
	ruleSet, err := g.activeRules(ctx)

	if err != nil {
		return GenerationStatus{}, err
	}

	status := GenerationStatus{
		ActiveRules:    len(ruleSet),
		AvailableTypes: types.AvailableAlertTypes,
	}

	if g.cache != nil {
		value, err := g.cache.Get(ctx, lastGeneratedKeyPrefix+branchID).Result()
		if err != nil && err != redis.Nil {
			log.Printf("Failed to read last generation time for branch %s: %v", branchID, err)
		}
		status.LastGenerated = value
	}

	return status, nil
}

// activeRules maps stored AlertRule rows onto rule variants, falling back to
// the built-in rule set when none are configured.
func (g *AlertGenerator) activeRules(ctx context.Context) ([]rules.Rule, error) {
	var stored []models.AlertRule

	if err := g.db.WithContext(ctx).Where("is_active = ?", true).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("load alert rules: %w", err)
	}

	var ruleSet []rules.Rule

	for _, row := range stored {
		if rule, ok := rules.FromModel(row); ok {
			ruleSet = append(ruleSet, rule)
		} else {
			log.Printf("Skipping alert rule %s with unsupported type %q", row.ID, row.AlertType)
		}
	}

	if len(ruleSet) == 0 {
		ruleSet = rules.DefaultRules()
	}

	return ruleSet, nil
}

func (g *AlertGenerator) recordLastGenerated(ctx context.Context, branchID string, now time.Time) {
	if g.cache == nil {
		return
	}

	key := lastGeneratedKeyPrefix + branchID

	if err := g.cache.Set(ctx, key, now.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		log.Printf("Failed to record last generation time for branch %s: %v", branchID, err)
	}
}

// escalateCritical pushes freshly committed critical alerts to the branch's
// chat webhooks. Escalation is best effort and never fails the run.
func (g *AlertGenerator) escalateCritical(ctx context.Context, branchID string, committed []models.Notification) {
	var critical []models.Notification

	for _, row := range committed {
		if types.SeverityAtLeast(row.Severity, types.SeverityCritical) {
			critical = append(critical, row)
		}
	}

	if len(critical) == 0 {
		return
	}

	var branch models.Branch

	if err := g.db.WithContext(ctx).Where("id = ?", branchID).First(&branch).Error; err != nil {
		log.Printf("Failed to load branch %s for webhook escalation: %v", branchID, err)
		return
	}

	if branch.DiscordWebhook == "" && branch.SlackWebhook == "" {
		return
	}

	var wg sync.WaitGroup

	for _, row := range critical {
		wg.Add(1)
		go func(n models.Notification) {
			defer wg.Done()
			if err := SendCriticalAlertNotification(branch, n); err != nil {
				log.Printf("Webhook escalation failed for notification %s (branch %s): %v",
					n.ID, branchID, err)
			}
		}(row)
	}

	wg.Wait()
}
