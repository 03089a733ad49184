package models

// ViewerReaction carries the requesting user's own reaction flags for
// a single comment node. It is attached after cache retrieval and is
// never stored in the cache.
type ViewerReaction struct {
	Liked      bool `json:"liked"`
	Disliked   bool `json:"disliked"`
	Bookmarked bool `json:"bookmarked"`
}

// CommentNode is one node of the enriched comment forest: the comment
// itself, its resolved author, and its nested replies. The Replies
// slice is the real nested structure; it must survive caching as-is.
// A node at the depth boundary keeps CanReply false so clients do not
// offer a reply affordance that the server would reject.
type CommentNode struct {
	Comment
	Author   UserCompact     `json:"author"`
	CanReply bool            `json:"can_reply"`
	Viewer   *ViewerReaction `json:"viewer,omitempty"`
	Replies  []*CommentNode  `json:"replies"`
}

// Clone returns a deep copy of the node and its entire reply subtree.
func (n *CommentNode) Clone() *CommentNode {
	if n == nil {
		return nil
	}
	out := *n
	if n.Viewer != nil {
		v := *n.Viewer
		out.Viewer = &v
	}
	out.Replies = CloneForest(n.Replies)
	return &out
}

// CloneForest deep-copies a forest of comment nodes.
func CloneForest(forest []*CommentNode) []*CommentNode {
	if forest == nil {
		return nil
	}
	out := make([]*CommentNode, len(forest))
	for i, n := range forest {
		out[i] = n.Clone()
	}
	return out
}

// CountForestNodes returns the total number of nodes in the forest,
// including nested replies at every level.
func CountForestNodes(forest []*CommentNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountForestNodes(n.Replies)
	}
	return total
}
