package post

const (
	msgAskTitle = "📝 Let's create a post!\nEnter the post title:"
	msgAskBody  = "Great! Now enter the post text.\n" +
		"Markdown is supported (*bold*, _italic_, [link](https://example.com))"
	msgAskMedia      = "📷 Send photos or videos, or press 'Skip'"
	msgMediaAdded    = "Media added! Send more or press 'Confirm'"
	msgNeedMedia     = "Please send a photo or a video"
	msgMixedMedia    = "This post already holds %[1]ss. Please send another %[1]s"
	msgMediaLimit    = "Media limit reached (10)"
	msgMediaCount    = "Media files: %d"
	msgPreviewHeader = "Post preview:"

	ackPublished = "✅ Post published!"
	ackFailed    = "❌ Error: %s"
	ackCancelled = "❌ Post creation cancelled"

	labelSkip    = "Skip"
	labelConfirm = "Confirm"
	labelPublish = "✅ Publish"
	labelEdit    = "✏️ Edit"
	labelCancel  = "❌ Cancel"
)

const maxAckLen = 200
