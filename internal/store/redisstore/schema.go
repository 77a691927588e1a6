package redisstore

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced by instance name so several
// quill deployments can share one Redis server.
//
// Key pattern: quill:{instance_name}:{entity}:{id}
// Channel pattern: quill:{instance_name}:{event_type}_events

// PostKey returns the Redis key for a post hash.
// Pattern: quill:{instance_name}:post:{post_id}
func PostKey(instanceName, postID string) string {
	return fmt.Sprintf("quill:%s:post:%s", instanceName, postID)
}

// OrderKey returns the Redis key for the insertion-order list.
// New IDs are LPUSHed, so LRANGE 0 -1 yields newest first.
// Pattern: quill:{instance_name}:posts
func OrderKey(instanceName string) string {
	return fmt.Sprintf("quill:%s:posts", instanceName)
}

// PostEventsChannel returns the Pub/Sub channel name for post events.
// Pattern: quill:{instance_name}:post_events
func PostEventsChannel(instanceName string) string {
	return fmt.Sprintf("quill:%s:post_events", instanceName)
}
