package bot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edgard/purgebot/internal/database"
	"github.com/edgard/purgebot/internal/purge"
)

// runOperation drives one purge through its whole lifecycle:
// searching -> awaiting_confirmation -> deleting -> terminal. Whatever the
// outcome, the operation leaves the registry before this returns.
func (b *Bot) runOperation(ctx context.Context, channelID, userID string, cmd *Command) {
	opID := uuid.NewString()
	log := b.log.With("operation_id", opID, "channel_id", channelID)

	b.registry.Register(&purge.Operation{
		ID:         opID,
		ChannelID:  channelID,
		UserID:     userID,
		Phase:      purge.PhaseSearching,
		StartTime:  time.Now(),
		SearchText: cmd.SearchText,
		AuthorID:   cmd.AuthorID,
		MaxAgeText: cmd.MaxAgeText,
	})

	statusID := b.reporter.sendStatus(channelID, "Searching the channel history, this may take a while...")

	spec := purge.SearchSpec{Text: cmd.SearchText, AuthorID: cmd.AuthorID}
	if cmd.MaxAge > 0 {
		spec.Cutoff = time.Now().Add(-cmd.MaxAge)
	}

	channel := b.channels(channelID)
	res, err := b.scanner.Scan(ctx, channel, opID, spec)
	if err != nil {
		log.ErrorContext(ctx, "Scan failed", "error", err)
		b.registry.Remove(opID)
		b.reporter.editStatus(channelID, statusID, "Something went wrong during the search. Nothing was deleted.")
		return
	}
	if res.Aborted {
		log.InfoContext(ctx, "Scan aborted", "partial_matches", len(res.Messages))
		b.reporter.editStatus(channelID, statusID,
			fmt.Sprintf("Search aborted. %d matches had been found; nothing was deleted.", len(res.Messages)))
		b.recordAudit(ctx, opID, channelID, userID, cmd, len(res.Messages), purge.Result{Aborted: true})
		return
	}
	if len(res.Messages) == 0 {
		log.InfoContext(ctx, "No matches found")
		b.registry.Remove(opID)
		b.reporter.editStatus(channelID, statusID, fmt.Sprintf("No messages matching %q were found.", cmd.SearchText))
		return
	}

	matches := res.Messages
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Timestamp.Before(matches[j].Timestamp)
	})

	b.registry.SetMatchCount(opID, len(matches))
	b.registry.SetPhase(opID, purge.PhaseAwaitingConfirmation)

	// Open the rendezvous before the buttons go live so a press can never
	// land while nobody is listening.
	b.confirms.add(opID)

	promptID, err := b.reporter.sendConfirmPrompt(channelID, opID, cmd, matches)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send confirmation prompt", "error", err)
		b.confirms.remove(opID)
		b.registry.Remove(opID)
		b.reporter.editStatus(channelID, statusID, "Something went wrong. Nothing was deleted.")
		return
	}
	b.reporter.editStatus(channelID, statusID,
		fmt.Sprintf("Found %d matching messages. Waiting for confirmation.", len(matches)))

	switch b.confirms.await(ctx, opID, b.cfg.Purge.ConfirmTimeout) {
	case choiceCancel:
		log.InfoContext(ctx, "Purge cancelled by user")
		b.registry.Remove(opID)
		b.reporter.retractPrompt(channelID, promptID)
		b.reporter.editStatus(channelID, statusID, "Purge cancelled. Nothing was deleted.")
		return
	case choiceTimeout:
		if !b.registry.Exists(opID) {
			// The abort command removed the operation while the
			// prompt was open.
			log.InfoContext(ctx, "Operation aborted while awaiting confirmation")
			b.reporter.expirePrompt(channelID, promptID, "Purge aborted.")
			b.reporter.editStatus(channelID, statusID, "Purge aborted. Nothing was deleted.")
			return
		}
		log.InfoContext(ctx, "Confirmation timed out")
		b.registry.Remove(opID)
		b.reporter.expirePrompt(channelID, promptID, "Confirmation expired. Nothing was deleted.")
		return
	case choiceConfirm:
		// The button handler verified liveness, but the abort command
		// can still race the button press.
		if !b.registry.Exists(opID) {
			log.InfoContext(ctx, "Operation aborted at confirmation")
			b.reporter.expirePrompt(channelID, promptID, "Purge aborted.")
			return
		}
	}

	b.registry.SetPhase(opID, purge.PhaseDeleting)
	b.reporter.expirePrompt(channelID, promptID, fmt.Sprintf("Deleting %d messages...", len(matches)))

	onProgress := func(deleted, skipped, total int) {
		b.reporter.editStatus(channelID, statusID,
			fmt.Sprintf("Deleting... %d of %d done (%d skipped).", deleted+skipped, total, skipped))
	}
	result := b.deleter.DeleteAll(ctx, channel, matches, opID, onProgress)
	b.registry.Remove(opID)

	b.recordAudit(ctx, opID, channelID, userID, cmd, len(matches), result)

	summary := fmt.Sprintf("Purge complete: %d deleted, %d skipped of %d matches.",
		result.Deleted, result.Skipped, len(matches))
	if result.Aborted {
		summary = fmt.Sprintf("Purge aborted: %d deleted, %d skipped of %d matches.",
			result.Deleted, result.Skipped, len(matches))
	}
	log.InfoContext(ctx, "Purge finished",
		"deleted", result.Deleted, "skipped", result.Skipped, "aborted", result.Aborted)
	b.reporter.editStatus(channelID, statusID, summary)
}

// abortChannel cancels every live operation in channelID and reports the count.
func (b *Bot) abortChannel(channelID string) {
	count := b.registry.RemoveByChannel(channelID)
	b.log.Info("Abort requested", "channel_id", channelID, "cancelled", count)

	var reply string
	switch count {
	case 0:
		reply = "No purge operations are running in this channel."
	case 1:
		reply = "Aborting 1 purge operation."
	default:
		reply = fmt.Sprintf("Aborting %d purge operations.", count)
	}
	b.reporter.sendStatus(channelID, reply)
}

// showLog replies with the channel's recent audit rows.
func (b *Bot) showLog(ctx context.Context, channelID string) {
	records, err := b.store.RecentPurges(ctx, channelID, b.cfg.Audit.LogLimit)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to load purge log", "channel_id", channelID, "error", err)
		b.reporter.sendStatus(channelID, "Could not load the purge log.")
		return
	}
	if len(records) == 0 {
		b.reporter.sendStatus(channelID, "No purges have been recorded for this channel.")
		return
	}

	text := "Recent purges:\n"
	for _, r := range records {
		outcome := "completed"
		if r.Aborted {
			outcome = "aborted"
		}
		text += fmt.Sprintf("- %s — %q (max age %s): %d deleted, %d skipped, %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.SearchText, r.MaxAge,
			r.Deleted, r.Skipped, outcome)
	}
	b.reporter.sendStatus(channelID, text)
}

func (b *Bot) recordAudit(ctx context.Context, opID, channelID, userID string, cmd *Command, matched int, result purge.Result) {
	record := &database.PurgeRecord{
		OperationID: opID,
		ChannelID:   channelID,
		RequestedBy: userID,
		SearchText:  cmd.SearchText,
		AuthorID:    cmd.AuthorID,
		MaxAge:      cmd.MaxAgeText,
		Matched:     matched,
		Deleted:     result.Deleted,
		Skipped:     result.Skipped,
		Aborted:     result.Aborted,
	}
	if err := b.store.RecordPurge(ctx, record); err != nil {
		// Audit is best effort; the purge itself already happened.
		b.log.WarnContext(ctx, "Failed to record purge audit row",
			"operation_id", opID, "error", err)
	}
}
