package linkedin

// UGC post field values.
const (
	LifecycleStatePublished = "PUBLISHED"
	MediaCategoryNone       = "NONE"
	VisibilityConnections   = "CONNECTIONS"
)

// UGCPost is the request body of POST /ugcPosts.
type UGCPost struct {
	SpecificContent SpecificContent `json:"specificContent"`
	Visibility      Visibility      `json:"visibility"`
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
}

// SpecificContent wraps the share payload.
type SpecificContent struct {
	ShareContent ShareContent `json:"com.linkedin.ugc.ShareContent"`
}

// ShareContent holds the post commentary and media category.
type ShareContent struct {
	ShareCommentary    ShareCommentary `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"`
}

// ShareCommentary is the post text.
type ShareCommentary struct {
	Text string `json:"text"`
}

// Visibility scopes who can see the post.
type Visibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

// NewUGCPost builds a text-only post visible to the member's connections.
func NewUGCPost(memberID, text string) UGCPost {
	return UGCPost{
		Author:         PersonURNPrefix + memberID,
		LifecycleState: LifecycleStatePublished,
		SpecificContent: SpecificContent{
			ShareContent: ShareContent{
				ShareCommentary:    ShareCommentary{Text: text},
				ShareMediaCategory: MediaCategoryNone,
			},
		},
		Visibility: Visibility{MemberNetworkVisibility: VisibilityConnections},
	}
}
