// Package api holds the Gin handlers for job submission and status lookup.
//
//	POST /transcribe_audio    multipart "file", 202 {task_id, status}
//	POST /transcribe_video    multipart "file", 202 {task_id, status}
//	POST /transcribe_youtube  {"youtube_url": ...}, 200 when captions exist, else 202
//	GET  /status/:task_id     {task_id, kind, status, result?}
//
// Uploads land in the shared upload directory, which is also served
// statically so chunk URLs resolve for the inference service.
package api
