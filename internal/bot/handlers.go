package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// onMessageCreate routes operator commands. Anything not starting with the
// configured prefix — and anything from a bot — is ignored.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	prefix := b.cfg.Discord.CommandPrefix
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}
	rest := strings.TrimPrefix(m.Content, prefix)
	if rest != "" && !strings.HasPrefix(rest, " ") {
		// Longer word sharing the prefix, not our command.
		return
	}

	cmd, err := ParseCommand(rest)
	if err != nil {
		// User input errors are reported synchronously; no operation
		// state exists yet.
		b.log.Info("Rejected malformed command",
			"channel_id", m.ChannelID, "user_id", m.Author.ID, "error", err)
		b.reporter.sendStatus(m.ChannelID, "Invalid command: "+err.Error()+
			"\nUsage: "+prefix+` "search text" [@user] [age]  |  `+prefix+" abort  |  "+prefix+" log")
		return
	}

	ctx := b.operationContext()
	switch cmd.Kind {
	case KindAbort:
		b.abortChannel(m.ChannelID)
	case KindLog:
		b.showLog(ctx, m.ChannelID)
	case KindSearch:
		b.log.Info("Starting purge operation",
			"channel_id", m.ChannelID, "user_id", m.Author.ID,
			"author_filter", cmd.AuthorID, "max_age", cmd.MaxAgeText)
		go b.runOperation(ctx, m.ChannelID, m.Author.ID, cmd)
	}
}

// onInteractionCreate resolves confirmation button presses. The registry is
// re-checked first because the abort command may have removed the operation
// while the prompt was open.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	var opID string
	var pressed choice
	switch {
	case strings.HasPrefix(customID, "purge:confirm:"):
		opID = strings.TrimPrefix(customID, "purge:confirm:")
		pressed = choiceConfirm
	case strings.HasPrefix(customID, "purge:cancel:"):
		opID = strings.TrimPrefix(customID, "purge:cancel:")
		pressed = choiceCancel
	default:
		return
	}

	if !b.registry.Exists(opID) {
		b.respondEphemeral(i, "This purge operation is no longer active.")
		return
	}

	if !b.confirms.resolve(opID, pressed) {
		b.respondEphemeral(i, "This confirmation has already been answered.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		b.log.Warn("Failed to acknowledge button press", "operation_id", opID, "error", err)
	}
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, text string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Warn("Failed to send ephemeral response", "error", err)
	}
}
