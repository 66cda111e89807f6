package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/purgebot/internal/purge"
)

// discordChannel adapts one Discord channel to the purge.Channel interface.
type discordChannel struct {
	session   *discordgo.Session
	channelID string
}

func newDiscordChannel(session *discordgo.Session, channelID string) *discordChannel {
	return &discordChannel{session: session, channelID: channelID}
}

func (c *discordChannel) FetchMessages(ctx context.Context, limit int, beforeID string) ([]purge.Message, error) {
	msgs, err := c.session.ChannelMessages(c.channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("channel messages fetch: %w", err)
	}
	out := make([]purge.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toEngineMessage(m))
	}
	return out, nil
}

func (c *discordChannel) DeleteMessage(ctx context.Context, messageID string) error {
	return c.session.ChannelMessageDelete(c.channelID, messageID, discordgo.WithContext(ctx))
}

func (c *discordChannel) BulkDelete(ctx context.Context, messageIDs []string) error {
	return c.session.ChannelMessagesBulkDelete(c.channelID, messageIDs, discordgo.WithContext(ctx))
}

// toEngineMessage maps the discordgo message shape onto the engine's
// read-only view.
func toEngineMessage(m *discordgo.Message) purge.Message {
	out := purge.Message{
		ID:          m.ID,
		Timestamp:   m.Timestamp,
		Content:     m.Content,
		FromWebhook: m.WebhookID != "",
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
		out.AuthorName = m.Author.Username
	}
	for _, e := range m.Embeds {
		embed := purge.Embed{
			Title:       e.Title,
			Description: e.Description,
		}
		if e.Author != nil {
			embed.AuthorName = e.Author.Name
		}
		if e.Footer != nil {
			embed.FooterText = e.Footer.Text
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, purge.EmbedField{Name: f.Name, Value: f.Value})
		}
		out.Embeds = append(out.Embeds, embed)
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, a.Filename)
	}
	return out
}
