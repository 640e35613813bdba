package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
	"resume-render/pkg/retry"
)

// RemoteAttempts bounds every remote entitlement read and write.
const RemoteAttempts = 3

// sharedReadTimeout bounds a remote read shared by concurrent callers.
const sharedReadTimeout = 15 * time.Second

// Ownership is the merged view of the device store and the remote record.
type Ownership struct {
	TemplateIDs []string `json:"templateIds"`
	// Degraded is set when the remote record could not be read and only
	// device knowledge was used.
	Degraded bool `json:"degraded"`
}

// Has reports whether id is owned.
func (o Ownership) Has(id domain.TemplateID) bool {
	return slices.Contains(o.TemplateIDs, string(id))
}

// GrantResult describes where a grant was recorded. The device store always
// has it once Grant returns without error.
type GrantResult struct {
	// Replicated is set when the remote record also has the grant.
	Replicated bool `json:"replicated"`
	// Pending is set when a remote write failed and was queued for replay.
	Pending bool `json:"pending"`
}

// Access is the editor gate decision for one template.
type Access struct {
	Template domain.Template
	Allowed  bool
	// Redirect is the location to send a visitor who may not open the editor.
	Redirect string
}

type pendingGrant struct {
	UserID     string `json:"userId"`
	TemplateID string `json:"templateId"`
}

// EntitlementService answers "may this session use that template" from the
// device store first and the remote record second. Remote failures degrade to
// device knowledge; they never fail a grant.
type EntitlementService struct {
	local  DeviceStore
	remote EntitlementStore
	policy retry.Policy
	reads  singleflight.Group
	locks  deviceLocks
	log    *logger.Logger
	find   func(domain.TemplateID) (domain.Template, bool)
}

// NewEntitlementService creates the service. remote may be nil for
// device-only operation; find looks templates up in the catalog.
func NewEntitlementService(local DeviceStore, remote EntitlementStore, retryBase time.Duration,
	find func(domain.TemplateID) (domain.Template, bool), log *logger.Logger) *EntitlementService {
	s := &EntitlementService{
		local:  local,
		remote: remote,
		log:    log,
		find:   find,
	}
	s.policy = retry.Policy{
		Attempts: RemoteAttempts,
		Base:     retryBase,
		Notify: func(err error, wait time.Duration) {
			s.log.Warn("remote entitlements unavailable, retrying", "error", err, "wait", wait)
		},
	}
	return s
}

// IsOwned checks the device store, then the remote record when a user is
// signed in.
func (s *EntitlementService) IsOwned(ctx context.Context, sess domain.Session, id domain.TemplateID) bool {
	if slices.Contains(s.localOwned(ctx, sess.DeviceID), string(id)) {
		return true
	}
	if !sess.Authenticated() || s.remote == nil {
		return false
	}
	return s.Owned(ctx, sess).Has(id)
}

// Owned returns the union of device and remote entitlements, device entries
// first.
func (s *EntitlementService) Owned(ctx context.Context, sess domain.Session) Ownership {
	ids := s.localOwned(ctx, sess.DeviceID)
	out := Ownership{TemplateIDs: ids}
	if !sess.Authenticated() || s.remote == nil {
		return out
	}

	if err := s.Reconcile(ctx, sess); err != nil {
		s.log.Warn("pending entitlements not replicated", "user", sess.UserID, "error", err)
	}
	remote, err := s.remoteOwned(ctx, sess.UserID)
	if err != nil {
		s.log.Warn("falling back to device entitlements", "user", sess.UserID, "error", err)
		out.Degraded = true
		return out
	}
	for _, id := range remote {
		if !slices.Contains(out.TemplateIDs, id) {
			out.TemplateIDs = append(out.TemplateIDs, id)
		}
	}
	return out
}

// Grant records id in the device store and, for a signed-in user, in the
// remote record. Only a device store failure is an error.
func (s *EntitlementService) Grant(ctx context.Context, sess domain.Session, id domain.TemplateID) (GrantResult, error) {
	if err := s.addLocal(ctx, sess.DeviceID, string(id)); err != nil {
		return GrantResult{}, err
	}
	if !sess.Authenticated() || s.remote == nil {
		return GrantResult{}, nil
	}

	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.remote.Add(ctx, sess.UserID, string(id))
	})
	if err == nil {
		s.reads.Forget(sess.UserID)
		return GrantResult{Replicated: true}, nil
	}

	s.log.Warn("entitlement kept on device only", "user", sess.UserID, "template", id, "error", err)
	if qerr := s.queuePending(ctx, sess.DeviceID, pendingGrant{UserID: sess.UserID, TemplateID: string(id)}); qerr != nil {
		s.log.Warn("failed to queue pending entitlement", "error", qerr)
		return GrantResult{}, nil
	}
	return GrantResult{Pending: true}, nil
}

// Reconcile replays grants whose remote write failed earlier, for the user
// of sess. Entries that fail again stay queued.
func (s *EntitlementService) Reconcile(ctx context.Context, sess domain.Session) error {
	if !sess.Authenticated() || s.remote == nil {
		return nil
	}
	pending, err := s.readPending(ctx, sess.DeviceID)
	if err != nil || len(pending) == 0 {
		return err
	}

	var (
		replayed []pendingGrant
		lastErr  error
	)
	for _, p := range pending {
		if p.UserID != sess.UserID {
			continue
		}
		if err := s.remote.Add(ctx, p.UserID, p.TemplateID); err != nil {
			lastErr = err
			continue
		}
		replayed = append(replayed, p)
	}
	if len(replayed) == 0 {
		return lastErr
	}
	s.reads.Forget(sess.UserID)
	if err := s.dropPending(ctx, sess.DeviceID, replayed); err != nil {
		return err
	}
	s.log.Info("replayed pending entitlements", "user", sess.UserID, "count", len(replayed))
	return lastErr
}

// Pending returns the grants still waiting for a remote write.
func (s *EntitlementService) Pending(ctx context.Context, deviceID string) ([]string, error) {
	pending, err := s.readPending(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.TemplateID)
	}
	return ids, nil
}

// CanOpen reports whether sess may edit t: free templates always, paid ones
// when owned.
func (s *EntitlementService) CanOpen(ctx context.Context, sess domain.Session, t domain.Template) bool {
	return !t.IsPaid() || s.IsOwned(ctx, sess, t.ID)
}

// EditorAccess decides whether the editor for id may be opened, and where to
// go otherwise.
func (s *EntitlementService) EditorAccess(ctx context.Context, sess domain.Session, id domain.TemplateID) Access {
	t, ok := s.find(id)
	if !ok {
		return Access{Redirect: "/"}
	}
	if s.CanOpen(ctx, sess, t) {
		return Access{Template: t, Allowed: true}
	}
	if !sess.Authenticated() {
		return Access{Template: t, Redirect: "/login?redirect=/editor/" + string(id)}
	}
	return Access{Template: t, Redirect: "/buy/" + string(id)}
}

func (s *EntitlementService) remoteOwned(ctx context.Context, userID string) ([]string, error) {
	v, err, _ := s.reads.Do(userID, func() (interface{}, error) {
		// detached from the first caller; every waiter shares this read
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		return retry.DoValue(ctx, s.policy, func(ctx context.Context) ([]string, error) {
			return s.remote.Owned(ctx, userID)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// localOwned reads the device list. An unreadable list counts as empty.
func (s *EntitlementService) localOwned(ctx context.Context, deviceID string) []string {
	ids, err := s.readList(ctx, deviceID)
	if err != nil {
		s.log.Warn("unreadable device entitlements", "device", deviceID, "error", err)
		return []string{}
	}
	return ids
}

func (s *EntitlementService) readList(ctx context.Context, deviceID string) ([]string, error) {
	raw, ok, err := s.local.Get(ctx, deviceID, purchasedKey)
	if err != nil || !ok {
		return []string{}, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return []string{}, fmt.Errorf("decode %s: %w", purchasedKey, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *EntitlementService) addLocal(ctx context.Context, deviceID, id string) error {
	unlock := s.locks.lock(deviceID)
	defer unlock()

	ids, err := s.readList(ctx, deviceID)
	if err != nil {
		// a corrupt list is replaced rather than blocking the grant
		s.log.Warn("replacing unreadable device entitlements", "device", deviceID, "error", err)
		ids = []string{}
	}
	if slices.Contains(ids, id) {
		return nil
	}
	b, err := json.Marshal(append(ids, id))
	if err != nil {
		return err
	}
	if err := s.local.Set(ctx, deviceID, purchasedKey, string(b)); err != nil {
		return fmt.Errorf("save device entitlement: %w", err)
	}
	return nil
}

func (s *EntitlementService) readPending(ctx context.Context, deviceID string) ([]pendingGrant, error) {
	raw, ok, err := s.local.Get(ctx, deviceID, pendingKey)
	if err != nil || !ok {
		return nil, err
	}
	var pending []pendingGrant
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, fmt.Errorf("decode %s: %w", pendingKey, err)
	}
	return pending, nil
}

func (s *EntitlementService) writePending(ctx context.Context, deviceID string, pending []pendingGrant) error {
	if len(pending) == 0 {
		return s.local.Delete(ctx, deviceID, pendingKey)
	}
	b, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.local.Set(ctx, deviceID, pendingKey, string(b))
}

func (s *EntitlementService) queuePending(ctx context.Context, deviceID string, p pendingGrant) error {
	unlock := s.locks.lock(deviceID)
	defer unlock()

	pending, err := s.readPending(ctx, deviceID)
	if err != nil {
		pending = nil
	}
	if slices.Contains(pending, p) {
		return nil
	}
	return s.writePending(ctx, deviceID, append(pending, p))
}

// dropPending removes done from the queue, keeping entries queued since it
// was read.
func (s *EntitlementService) dropPending(ctx context.Context, deviceID string, done []pendingGrant) error {
	unlock := s.locks.lock(deviceID)
	defer unlock()

	pending, err := s.readPending(ctx, deviceID)
	if err != nil {
		return err
	}
	keep := pending[:0:0]
	for _, p := range pending {
		if !slices.Contains(done, p) {
			keep = append(keep, p)
		}
	}
	return s.writePending(ctx, deviceID, keep)
}
