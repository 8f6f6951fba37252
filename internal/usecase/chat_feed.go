package usecase

import (
	"context"
	"sort"
	"sync"

	"chatdash/internal/domain/entity"
	"chatdash/internal/domain/repository"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
)

const DefaultFeedBatchSize = 10

// FeedSink receives every recomputed feed: the merged list first, then an
// ALL selection over the same list.
type FeedSink interface {
	SetUserChats(chats []*entity.Chat)
	SelectChatType(chatType entity.ChatType, chats []*entity.Chat)
}

// ChatFeed merges the user's group chats and private chats into one list
// ordered by last activity. Each source keeps its latest snapshot; a delivery
// from either one recomputes the merge.
type ChatFeed struct {
	session   *Session
	source    repository.ChatSource
	sink      FeedSink
	batchSize int

	mu           sync.Mutex
	groups       []*entity.Chat
	privates     []*entity.Chat
	unsubscribes []func()
	stopped      bool
}

func NewChatFeed(session *Session, source repository.ChatSource, sink FeedSink, batchSize int) *ChatFeed {
	if batchSize <= 0 {
		batchSize = DefaultFeedBatchSize
	}

	return &ChatFeed{
		session:   session,
		source:    source,
		sink:      sink,
		batchSize: batchSize,
	}
}

// Start opens the group and private subscriptions side by side.
func (f *ChatFeed) Start(ctx context.Context) error {
	userID := f.session.UserID()
	if userID == "" {
		return errors.Unauthorized("Chat feed requires a signed-in user", nil)
	}

	unsubscribeGroups, err := f.source.SubscribeGroupChats(ctx, userID, f.batchSize,
		func(chats []*entity.Chat) { f.update(entity.ChatTypeGroup, chats) },
		func(err error) { f.fail(entity.ChatTypeGroup, err) })
	if err != nil {
		return err
	}
	f.track(unsubscribeGroups)

	unsubscribePrivates, err := f.source.SubscribePrivateChats(ctx, userID, f.batchSize,
		func(chats []*entity.Chat) { f.update(entity.ChatTypePrivate, chats) },
		func(err error) { f.fail(entity.ChatTypePrivate, err) })
	if err != nil {
		f.Stop()
		return err
	}
	f.track(unsubscribePrivates)

	return nil
}

func (f *ChatFeed) track(unsubscribe func()) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		unsubscribe()
		return
	}
	f.unsubscribes = append(f.unsubscribes, unsubscribe)
	f.mu.Unlock()
}

// update publishes under the lock so sinks see merges in the order they were computed.
func (f *ChatFeed) update(chatType entity.ChatType, chats []*entity.Chat) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}

	switch chatType {
	case entity.ChatTypeGroup:
		f.groups = chats
	case entity.ChatTypePrivate:
		f.privates = chats
	}

	merged := MergeChats(f.groups, f.privates)
	f.sink.SetUserChats(merged)
	f.sink.SelectChatType(entity.ChatTypeAll, merged)
}

func (f *ChatFeed) fail(chatType entity.ChatType, err error) {
	logger.Error("Chat feed %s subscription for user %s failed: %v", chatType, f.session.UserID(), err)
}

// Stop cancels both subscriptions. Later deliveries are dropped.
func (f *ChatFeed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	unsubscribes := f.unsubscribes
	f.unsubscribes = nil
	f.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
}

// MergeChats tags each chat with its type and returns both sets in one new
// slice, most recent lastMessageAt first. Ties keep group-before-private input order.
func MergeChats(groups, privates []*entity.Chat) []*entity.Chat {
	merged := make([]*entity.Chat, 0, len(groups)+len(privates))

	for _, chat := range groups {
		c := *chat
		c.Type = entity.ChatTypeGroup
		merged = append(merged, &c)
	}
	for _, chat := range privates {
		c := *chat
		c.Type = entity.ChatTypePrivate
		merged = append(merged, &c)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LastMessageAt.After(merged[j].LastMessageAt)
	})

	return merged
}

// FilterChats keeps the chats of chatType in their existing order. ChatTypeAll
// and unknown types keep everything.
func FilterChats(chats []*entity.Chat, chatType entity.ChatType) []*entity.Chat {
	filtered := make([]*entity.Chat, 0, len(chats))

	switch chatType {
	case entity.ChatTypeGroup, entity.ChatTypePrivate:
		for _, chat := range chats {
			if chat.Type == chatType {
				filtered = append(filtered, chat)
			}
		}
	default:
		filtered = append(filtered, chats...)
	}

	return filtered
}
