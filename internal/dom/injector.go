package dom

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bericyb/dislinkedIn/internal/bus"
)

// Identifier attributes on post containers. componentkey is the current
// scheme; data-urn survives on older feed markup.
const (
	AttrComponentKey = "componentkey"
	AttrLegacyURN    = "data-urn"
	ActivityPrefix   = "urn:li:activity:"
)

// Markers and affordance classes.
const (
	ClassDislikeButton = "dislinkd-dislike-button"
	ClassProcessed     = "dislinkd-processed"
	ClassDisliked      = "dislinkd-disliked"
	ClassCount         = "dislike-count"
	ClassButtonText    = "dislike-button__text"

	attrViewName    = "data-view-name"
	viewReaction    = "reaction-button"
	viewComment     = "feed-comment-button"
	attrPostURN     = "data-post-urn"
	attrAriaLabel   = "aria-label"
	attrAriaPressed = "aria-pressed"
)

// Injector watches a document for action bars and decorates each one with a
// dislike toggle wired to the background service over the message channel.
// Scans are idempotent: processed markers guarantee an unchanged document can
// be scanned any number of times without double-inserting.
type Injector struct {
	doc  *Document
	disp *bus.Dispatcher
	log  zerolog.Logger

	mu         sync.Mutex
	dislikes   map[string]int
	disconnect func()
}

func NewInjector(doc *Document, disp *bus.Dispatcher, logger zerolog.Logger) *Injector {
	return &Injector{
		doc:      doc,
		disp:     disp,
		log:      logger,
		dislikes: make(map[string]int),
	}
}

// Start loads the counter cache, installs the tree watcher, and runs the
// initial full scan. The watcher rescans only each added subtree.
func (inj *Injector) Start(ctx context.Context) {
	inj.loadDislikes(ctx)

	inj.disconnect = inj.doc.Observe(func(added *Node) {
		inj.Scan(ctx, added)
	})

	inj.Scan(ctx, inj.doc.Body)
}

// Stop disconnects the watcher and removes every injected affordance — a
// full compensating teardown.
func (inj *Injector) Stop() {
	if inj.disconnect != nil {
		inj.disconnect()
		inj.disconnect = nil
	}

	for _, aff := range inj.affordances() {
		aff.Remove()
	}
}

// Scan decorates every eligible action bar in root's subtree. An action bar
// missing a stable identifier is skipped without being marked, so the scan
// of the rest of the batch continues undisturbed.
func (inj *Injector) Scan(ctx context.Context, root *Node) {
	reactions := root.FindAll(func(n *Node) bool {
		return n.Tag == "button" && n.Attr(attrViewName) == viewReaction
	})

	for _, reaction := range reactions {
		bar := reaction.Parent()
		if bar == nil || bar.HasClass(ClassProcessed) {
			continue
		}

		comment := bar.Find(func(n *Node) bool {
			return n.Tag == "button" && n.Attr(attrViewName) == viewComment
		})
		if comment == nil {
			continue
		}
		if comment.HasClass(ClassProcessed) {
			continue
		}

		if existing := bar.Find(func(n *Node) bool { return n.HasClass(ClassDislikeButton) }); existing != nil {
			bar.AddClass(ClassProcessed)
			comment.AddClass(ClassProcessed)
			continue
		}

		postID := postIdentifier(bar)
		if postID == "" {
			// May gain an identifier later; leave unmarked.
			continue
		}

		aff := inj.newAffordance(ctx, postID)
		bar.InsertBefore(aff, comment)

		inj.updateAffordance(aff, postID, false)

		bar.AddClass(ClassProcessed)
		comment.AddClass(ClassProcessed)
	}
}

// Toggle is the click handler for one affordance. The add/remove decision
// reads the rendered toggle state, not the cache.
func (inj *Injector) Toggle(ctx context.Context, aff *Node) {
	postID := aff.Attr(attrPostURN)
	if postID == "" {
		return
	}
	button := innerButton(aff)
	if button == nil {
		return
	}
	pressed := button.Attr(attrAriaPressed) == "true"

	action := bus.ActionAddDislike
	if pressed {
		action = bus.ActionRemoveDislike
	}

	resp := <-inj.disp.Send(ctx, bus.Request{Action: action, PostID: postID})
	if !resp.Success {
		// Leave the rendered state untouched; the failure already surfaced
		// through both store paths.
		inj.log.Warn().Str("post_id", postID).Str("error", resp.Error).Msg("dislike toggle failed")
		return
	}

	inj.mu.Lock()
	if resp.Count == 0 {
		delete(inj.dislikes, postID)
	} else {
		inj.dislikes[postID] = resp.Count
	}
	inj.mu.Unlock()

	inj.updateAffordance(aff, postID, !pressed)
}

// HandlePush is the content-side message listener.
func (inj *Injector) HandlePush(ctx context.Context, msg bus.Push) {
	switch msg.Action {
	case bus.ActionSyncDislikes:
		inj.mu.Lock()
		inj.dislikes = make(map[string]int, len(msg.Dislikes))
		for urn, count := range msg.Dislikes {
			inj.dislikes[urn] = count
		}
		inj.mu.Unlock()
		inj.UpdateAll()

	case bus.ActionRefreshDislikes:
		inj.loadDislikes(ctx)
		inj.UpdateAll()

	case bus.ActionClearAllDislikes:
		inj.mu.Lock()
		inj.dislikes = make(map[string]int)
		inj.mu.Unlock()
		inj.UpdateAll()
	}
}

// UpdateAll re-renders every injected affordance from the current cache.
func (inj *Injector) UpdateAll() {
	for _, aff := range inj.affordances() {
		postID := aff.Attr(attrPostURN)
		if postID == "" {
			continue
		}
		inj.updateAffordance(aff, postID, inj.count(postID) > 0)
	}
}

// Count reports the cached count for a URN (rendered, not authoritative).
func (inj *Injector) Count(postURN string) int {
	return inj.count(postURN)
}

func (inj *Injector) count(postURN string) int {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	return inj.dislikes[postURN]
}

func (inj *Injector) loadDislikes(ctx context.Context) {
	resp := <-inj.disp.Send(ctx, bus.Request{Action: bus.ActionGetAllDislikes})
	if !resp.Success {
		inj.log.Warn().Str("error", resp.Error).Msg("loading dislikes failed")
		return
	}
	inj.mu.Lock()
	inj.dislikes = make(map[string]int, len(resp.Dislikes))
	for urn, count := range resp.Dislikes {
		inj.dislikes[urn] = count
	}
	inj.mu.Unlock()
}

func (inj *Injector) newAffordance(ctx context.Context, postID string) *Node {
	aff := NewNode("span")
	aff.AddClass(ClassDislikeButton)
	aff.SetAttr(attrPostURN, postID)

	button := NewNode("button")
	button.SetAttr(attrAriaPressed, "false")
	button.SetAttr(attrAriaLabel, "React Dislike")
	aff.AppendChild(button)

	text := NewNode("span")
	text.AddClass(ClassButtonText)
	text.Text = "Dislike"
	button.AppendChild(text)

	aff.OnClick = func() {
		inj.Toggle(ctx, aff)
	}
	return aff
}

func (inj *Injector) updateAffordance(aff *Node, postID string, disliked bool) {
	button := innerButton(aff)
	text := aff.Find(func(n *Node) bool { return n.HasClass(ClassButtonText) })
	if button == nil || text == nil {
		return
	}

	if disliked {
		button.SetAttr(attrAriaPressed, "true")
		button.AddClass(ClassDisliked)
		text.Text = "Disliked"
	} else {
		button.SetAttr(attrAriaPressed, "false")
		button.RemoveClass(ClassDisliked)
		text.Text = "Dislike"
	}

	count := inj.count(postID)
	countNode := aff.Find(func(n *Node) bool { return n.HasClass(ClassCount) })
	if count > 0 {
		if countNode == nil {
			countNode = NewNode("span")
			countNode.AddClass(ClassCount)
			aff.AppendChild(countNode)
		}
		countNode.Text = strconv.Itoa(count)
	} else if countNode != nil {
		countNode.Remove()
	}
}

func (inj *Injector) affordances() []*Node {
	return inj.doc.Body.FindAll(func(n *Node) bool {
		return n.HasClass(ClassDislikeButton)
	})
}

func innerButton(aff *Node) *Node {
	return aff.Find(func(n *Node) bool { return n.Tag == "button" && n != aff })
}

// postIdentifier resolves the stable identifier for a post: the nearest
// ancestor componentkey carrying an activity URN, falling back to the legacy
// data-urn attribute.
func postIdentifier(el *Node) string {
	if container := el.Closest(func(n *Node) bool {
		return strings.HasPrefix(n.Attr(AttrComponentKey), ActivityPrefix)
	}); container != nil {
		return container.Attr(AttrComponentKey)
	}

	if legacy := el.Closest(func(n *Node) bool {
		return n.Attr(AttrLegacyURN) != ""
	}); legacy != nil {
		return legacy.Attr(AttrLegacyURN)
	}

	return ""
}
