package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZakisM/general-notifier/internal/alert"
)

// cmdAdd handles: add <url> <matching_text> [-n]
//
// -n inverts the alert: notify when the pattern does NOT match.
func (r *Router) cmdAdd(ctx context.Context, userID int64, args []string) error {
	pos, _, bools := parseFlags(args)
	if len(pos) < 1 {
		return errors.New("missing URL")
	}
	if len(pos) < 2 {
		return errors.New("missing matching text")
	}

	rawURL := pos[0]
	matchingText := sanitizeMatchingText(pos[1], r.prefix)
	invert := bools["n"]

	count, err := r.repo.Count(ctx, userID)
	if err != nil {
		return err
	}

	a, err := alert.New(rawURL, matchingText, invert, userID, count+1)
	if err != nil {
		return err
	}
	if err := r.repo.Insert(ctx, a); err != nil {
		return err
	}

	return r.reply(ctx, userID,
		fmt.Sprintf("Successfully added alert! Use %slist to see your current alerts", r.prefix))
}

// sanitizeMatchingText strips the command prefix character and maps a
// tripled single quote to a double quote, a convenience for users who
// cannot type double quotes in the chat UI.
func sanitizeMatchingText(s, prefix string) string {
	s = strings.ReplaceAll(s, prefix, "")
	s = strings.ReplaceAll(s, "'''", `"`)
	return s
}

// cmdList handles: list
func (r *Router) cmdList(ctx context.Context, userID int64) error {
	alerts, err := r.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		return r.replyPre(ctx, userID, "You currently have 0 alerts.")
	}
	return r.replyPre(ctx, userID, renderAlerts(alerts))
}

// cmdDelete handles: delete <ordinal>
func (r *Router) cmdDelete(ctx context.Context, userID int64, args []string) error {
	if len(args) < 1 {
		return errors.New("missing alert number")
	}
	ordinal, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || ordinal < 1 {
		return fmt.Errorf("invalid alert number %q", args[0])
	}

	if err := r.repo.Delete(ctx, userID, ordinal); err != nil {
		return err
	}

	return r.reply(ctx, userID,
		fmt.Sprintf("Successfully deleted alert! Use %slist to see your current alerts", r.prefix))
}
