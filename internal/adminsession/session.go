// Package adminsession 管理浏览器级别的管理员开关（LOCKED / UNLOCKED）。
package adminsession

import (
	"errors"
	"strings"
	"sync"

	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// StateKey 是持久化管理员状态使用的键。
const StateKey = "isAdmin"

// 通知级别
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

const (
	MessageUnlocked  = "Admin mode unlocked!"
	MessageRejected  = "Incorrect keyword."
	MessageLocked    = "Admin mode locked."
	MessageForbidden = "Admin access required."
)

// ErrNoKeyword 表示既没有配置明文关键字也没有配置哈希。
var ErrNoKeyword = errors.New("admin keyword is not configured")

// Store 是管理员状态的持久化后端。
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Notifier 把状态变化反馈给用户。
type Notifier interface {
	Notify(level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level, message string)

// Notify calls f(level, message).
func (f NotifierFunc) Notify(level, message string) {
	f(level, message)
}

type discardNotifier struct{}

func (discardNotifier) Notify(string, string) {}

// MemoryStore 是进程内的 Store，供测试与命令行使用。
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore 创建空的 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// KeywordVerifier 使用 bcrypt 哈希校验共享关键字。
type KeywordVerifier struct {
	hash []byte
}

// NewKeywordVerifier 根据已有的 bcrypt 哈希构造校验器。空哈希得到一个永远拒绝的校验器。
func NewKeywordVerifier(hash string) (*KeywordVerifier, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return &KeywordVerifier{}, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &KeywordVerifier{hash: []byte(hash)}, nil
}

// KeywordVerifierFromKeyword 在启动时对明文关键字做哈希。
func KeywordVerifierFromKeyword(keyword string) (*KeywordVerifier, error) {
	if keyword == "" {
		return nil, ErrNoKeyword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(keyword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &KeywordVerifier{hash: hash}, nil
}

// LoadKeywordVerifier 优先使用哈希，其次是明文关键字；都为空时返回一个永远拒绝的校验器。
func LoadKeywordVerifier(keyword, hash string) (*KeywordVerifier, error) {
	if strings.TrimSpace(hash) != "" {
		return NewKeywordVerifier(hash)
	}
	if keyword == "" {
		logger.Warn("admin keyword not configured, admin mode cannot be unlocked")
		return &KeywordVerifier{}, nil
	}
	return KeywordVerifierFromKeyword(keyword)
}

// Configured reports whether any keyword can unlock.
func (v *KeywordVerifier) Configured() bool {
	return v != nil && len(v.hash) > 0
}

// Verify 比较候选关键字，比较是精确且区分大小写的。
func (v *KeywordVerifier) Verify(candidate string) bool {
	if !v.Configured() || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
}

// Session 是一个浏览器的管理员开关。
type Session struct {
	store    Store
	verifier *KeywordVerifier
	notifier Notifier
	unlocked bool
}

// New 在构造时读取已持久化的状态。
func New(store Store, verifier *KeywordVerifier, notifier Notifier) *Session {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &Session{store: store, verifier: verifier, notifier: notifier}
	if value, ok := store.Get(StateKey); ok {
		s.unlocked = value == "true"
	}
	return s
}

// IsUnlocked reports the current state.
func (s *Session) IsUnlocked() bool {
	return s.unlocked
}

// Unlock 只有在关键字正确时才切换到 UNLOCKED 并持久化。
func (s *Session) Unlock(candidate string) bool {
	if !s.verifier.Verify(candidate) {
		metrics.ObserveUnlock(false)
		s.notifier.Notify(LevelError, MessageRejected)
		return false
	}

	metrics.ObserveUnlock(true)
	s.unlocked = true
	s.persist("true")
	s.notifier.Notify(LevelSuccess, MessageUnlocked)
	return true
}

// Lock 总是持久化 false。
func (s *Session) Lock() {
	s.unlocked = false
	s.persist("false")
	s.notifier.Notify(LevelInfo, MessageLocked)
}

func (s *Session) persist(value string) {
	if err := s.store.Set(StateKey, value); err != nil {
		// 内存中的状态依然生效，只是下次加载会丢失
		logger.Warn("persist admin state failed", "error", err)
	}
}
