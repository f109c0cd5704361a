package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/utils"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Broadcaster 将文档活动推送给实时订阅者
type Broadcaster interface {
	BroadcastDocument(documentID string, payload []byte)
}

// ActivityHandler 活动事件处理器
// 同步写入 activity_logs,再异步分发到实时订阅者和 Webhook
type ActivityHandler struct {
	db             *gorm.DB
	persistTimeout time.Duration
	broadcaster    Broadcaster
	httpClient     *http.Client
	webhooks       []string
	retries        int
	logger         logrus.FieldLogger
	queue          chan *workflow.ActivityEvent
	stop           chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// NewActivityHandler 创建活动事件处理器并启动 worker
func NewActivityHandler(db *gorm.DB, cfg config.ActivityConfig, broadcaster Broadcaster, logger logrus.FieldLogger) *ActivityHandler {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	timeout := time.Duration(cfg.WebhookTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	persistTimeout := time.Duration(cfg.PersistTimeout) * time.Second
	if persistTimeout <= 0 {
		persistTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	h := &ActivityHandler{
		db:             db,
		persistTimeout: persistTimeout,
		broadcaster:    broadcaster,
		httpClient:     &http.Client{Timeout: timeout},
		webhooks:       cfg.WebhookURLs,
		retries:        cfg.WebhookRetries,
		logger:         logger.WithField("component", "activity"),
		queue:          make(chan *workflow.ActivityEvent, queueSize),
		stop:           make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.worker()
	}
	return h
}

// Record 实现 workflow.ActivitySink
func (h *ActivityHandler) Record(ctx context.Context, evt *workflow.ActivityEvent) error {
	entry := &model.ActivityLogModel{
		ID:         uuid.New().String(),
		Action:     evt.Action,
		DocumentID: evt.DocumentID,
		StepID:     evt.StepID,
		UserID:     evt.UserID,
		RequestID:  utils.RequestIDFromContext(ctx),
		CreatedAt:  evt.OccurredAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	details := map[string]interface{}{
		"document_status": evt.DocumentStatus,
	}
	if evt.Sequence > 0 {
		details["sequence"] = evt.Sequence
	}
	if evt.Comment != "" {
		details["comment"] = evt.Comment
	}
	if err := entry.SetDetails(details); err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	// 写库耗时受 persistTimeout 限制,超时则放弃本条活动
	saveCtx, cancel := context.WithTimeout(ctx, h.persistTimeout)
	defer cancel()
	if err := repository.NewActivityLogRepository(h.db.WithContext(saveCtx)).Save(entry); err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}

	select {
	case h.queue <- evt:
	default:
		metrics.RecordActivityDropped()
		h.logger.WithFields(logrus.Fields{
			"document_id": evt.DocumentID,
			"action":      evt.Action,
		}).Warn("activity queue full, dropping fan-out")
	}
	return nil
}

func (h *ActivityHandler) worker() {
	defer h.wg.Done()
	for {
		select {
		case evt := <-h.queue:
			h.dispatch(evt)
		case <-h.stop:
			return
		}
	}
}

// dispatch 推送到订阅者和所有 Webhook
func (h *ActivityHandler) dispatch(evt *workflow.ActivityEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal activity event")
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastDocument(evt.DocumentID, payload)
	}

	for _, url := range h.webhooks {
		if err := h.deliver(url, payload); err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"webhook":     url,
				"document_id": evt.DocumentID,
			}).Error("webhook delivery failed")
		}
	}
}

// deliver 带指数退避地投递单个 Webhook
func (h *ActivityHandler) deliver(url string, payload []byte) error {
	tries := h.retries
	if tries < 1 {
		tries = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-h.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, h.send(ctx, url, payload)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(tries)),
	)
	return err
}

func (h *ActivityHandler) send(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("webhook returned status code: %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}
	return nil
}

// Stop 停止 worker,未分发的事件被丢弃(已持久化)
func (h *ActivityHandler) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	h.wg.Wait()
}
