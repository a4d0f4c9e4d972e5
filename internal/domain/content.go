package domain

import "fmt"

const (
	// ExcerptMaxLength is the longest comment excerpt, in characters, sent as-is.
	ExcerptMaxLength = 50
	excerptKeep      = ExcerptMaxLength - len(ExcerptEllipsis)
	ExcerptEllipsis  = "..."
)

// Content is the type-specific part of a push notification. Exactly one
// implementation exists per NotificationType; each carries only the fields
// its title and body need.
type Content interface {
	Type() NotificationType
	Title() string
	Body(sender string) string
	// Fields returns the type-specific entries of the data map.
	Fields() map[string]string
	isContent()
}

type FriendRequestContent struct{}

func (FriendRequestContent) Type() NotificationType { return TypeFriendRequest }
func (FriendRequestContent) Title() string          { return "Friend request received" }
func (FriendRequestContent) Body(sender string) string {
	return fmt.Sprintf("%s sent you a friend request", sender)
}
func (FriendRequestContent) Fields() map[string]string { return map[string]string{} }
func (FriendRequestContent) isContent()                {}

type GroupInvitationContent struct {
	GroupID   string
	GroupName string
}

func (GroupInvitationContent) Type() NotificationType { return TypeGroupInvitation }
func (GroupInvitationContent) Title() string          { return "Group invitation received" }
func (c GroupInvitationContent) Body(sender string) string {
	return fmt.Sprintf("%s invited you to the group \"%s\"", sender, c.GroupName)
}
func (c GroupInvitationContent) Fields() map[string]string {
	return map[string]string{
		"groupId":   c.GroupID,
		"groupName": c.GroupName,
	}
}
func (GroupInvitationContent) isContent() {}

type ReactionContent struct {
	RelatedItemID string
	InteractionID string
}

func (ReactionContent) Type() NotificationType { return TypeReaction }
func (ReactionContent) Title() string          { return "New reaction" }
func (ReactionContent) Body(sender string) string {
	return fmt.Sprintf("%s reacted to your post", sender)
}
func (c ReactionContent) Fields() map[string]string {
	return map[string]string{
		"relatedItemId": c.RelatedItemID,
		"interactionId": c.InteractionID,
	}
}
func (ReactionContent) isContent() {}

type CommentContent struct {
	RelatedItemID string
	InteractionID string
	// Excerpt is already truncated; empty when the comment could not be read.
	Excerpt string
}

func (CommentContent) Type() NotificationType { return TypeComment }
func (CommentContent) Title() string          { return "New comment" }
func (c CommentContent) Body(sender string) string {
	if c.Excerpt == "" {
		return fmt.Sprintf("%s commented on your post", sender)
	}
	return fmt.Sprintf("%s commented on your post: %s", sender, c.Excerpt)
}
func (c CommentContent) Fields() map[string]string {
	return map[string]string{
		"relatedItemId": c.RelatedItemID,
		"interactionId": c.InteractionID,
	}
}
func (CommentContent) isContent() {}

// Excerpt shortens text longer than ExcerptMaxLength characters to its first
// 47 characters followed by an ellipsis. Length is counted in runes.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= ExcerptMaxLength {
		return text
	}
	return string(runes[:excerptKeep]) + ExcerptEllipsis
}
