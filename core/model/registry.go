package model

import (
	"sort"
	"sync"

	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// Tagged は永続化可能な予測関数などが実装するインターフェース。
// Tag はレジストリ上で型を一意に識別する。
type Tagged interface {
	Tag() string
}

// Factory は空のインスタンスを生成する。戻り値はgobでデコード可能なポインタであること。
type Factory func() Tagged

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register はタグとファクトリを登録する。各実装のinitから呼ぶ。
// 同じタグの二重登録はプログラミングエラーなのでpanicする。
func Register(tag string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if tag == "" || factory == nil {
		panic(errors.NewValidationError("tag", "empty tag or nil factory", tag))
	}
	if _, dup := registry[tag]; dup {
		panic(errors.NewValidationError("tag", "already registered", tag))
	}
	registry[tag] = factory
}

// New はタグに対応する空のインスタンスを返す
func New(tag string) (Tagged, error) {
	registryMu.RLock()
	factory, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownTag, "kernelsvm: %q", tag)
	}
	return factory(), nil
}

// Tags は登録済みのタグをソートして返す
func Tags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
