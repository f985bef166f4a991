package blogs

import "fmt"

const RouteBlogs = "/blogs/"

func blogPath(id int64) string {
	return fmt.Sprintf("/blogs/%d", id)
}

func blogActionPath(id int64, action string) string {
	return fmt.Sprintf("/blogs/%d/%s", id, action)
}

func blockPath(id int64) string {
	return fmt.Sprintf("/admin/blogs/%d/block", id)
}

func commentsPath(blogID int64) string {
	return fmt.Sprintf("/blogs/%d/comments", blogID)
}

func commentPath(id int64) string {
	return fmt.Sprintf("/comments/%d", id)
}

func commentApprovalPath(id int64) string {
	return fmt.Sprintf("/admin/comments/%d/toggle-approval", id)
}

func attachmentsPath(blogID int64) string {
	return fmt.Sprintf("/blogs/%d/attachments", blogID)
}

func attachmentPath(id int64) string {
	return fmt.Sprintf("/attachments/%d", id)
}
