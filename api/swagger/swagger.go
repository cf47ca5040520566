package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS API",
        "description": "Teaching schedules, session attendance and notifications",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, refresh and logout"},
        {"name": "AcademicClasses", "description": "Academic class administration"},
        {"name": "ClassInstructors", "description": "Instructor ↔ class assignments"},
        {"name": "TeachingSchedules", "description": "Teaching session lifecycle"},
        {"name": "SessionAttendances", "description": "Per-session attendance tracking"},
        {"name": "Notifications", "description": "User notifications and reminders"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-classes": {
            "get": {
                "tags": ["AcademicClasses"],
                "summary": "List academic classes",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["AcademicClasses"],
                "summary": "Create academic class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAcademicClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate class code"}
                }
            }
        },
        "/academic-classes/{id}": {
            "get": {
                "tags": ["AcademicClasses"],
                "summary": "Get academic class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["AcademicClasses"],
                "summary": "Update academic class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAcademicClassRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["AcademicClasses"],
                "summary": "Delete academic class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/academic-class-instructors": {
            "post": {
                "tags": ["ClassInstructors"],
                "summary": "Replace the instructor set of a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignInstructorsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignment has dependent schedules"}
                }
            }
        },
        "/academic-class-instructors/class/{classId}": {
            "get": {
                "tags": ["ClassInstructors"],
                "summary": "List instructors assigned to a class",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-class-instructors/instructor/{instructorId}": {
            "get": {
                "tags": ["ClassInstructors"],
                "summary": "List classes an instructor is assigned to",
                "parameters": [
                    {"name": "instructorId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teaching-schedules": {
            "get": {
                "tags": ["TeachingSchedules"],
                "summary": "List teaching schedules",
                "parameters": [
                    {"name": "academicClassId", "in": "query", "type": "string"},
                    {"name": "academicClassInstructorId", "in": "query", "type": "string"},
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "startDate", "in": "query", "type": "string"},
                    {"name": "endDate", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TeachingSchedules"],
                "summary": "Create teaching schedule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeachingScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or instructor conflict"}
                }
            }
        },
        "/teaching-schedules/{id}": {
            "get": {
                "tags": ["TeachingSchedules"],
                "summary": "Get teaching schedule with attendances",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["TeachingSchedules"],
                "summary": "Update teaching schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeachingScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["TeachingSchedules"],
                "summary": "Delete teaching schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/teaching-schedules/{id}/status": {
            "patch": {
                "tags": ["TeachingSchedules"],
                "summary": "Update schedule status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid transition"}
                }
            }
        },
        "/teaching-schedules/{id}/recording": {
            "patch": {
                "tags": ["TeachingSchedules"],
                "summary": "Attach session recording URL",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttachRecordingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session-attendances": {
            "get": {
                "tags": ["SessionAttendances"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "scheduleId", "in": "query", "type": "string"},
                    {"name": "studentAcademicId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SessionAttendances"],
                "summary": "Create attendance record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Duplicate record or validation failure"}
                }
            }
        },
        "/session-attendances/mark-attendance": {
            "post": {
                "tags": ["SessionAttendances"],
                "summary": "Mark a student's attendance for a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session-attendances/mark-leave": {
            "post": {
                "tags": ["SessionAttendances"],
                "summary": "Record a student leaving a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkLeaveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Join time not recorded"}
                }
            }
        },
        "/session-attendances/schedule/{scheduleId}/stats": {
            "get": {
                "tags": ["SessionAttendances"],
                "summary": "Attendance report for a session",
                "parameters": [
                    {"name": "scheduleId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session-attendances/schedule/{scheduleId}/export": {
            "get": {
                "tags": ["SessionAttendances"],
                "summary": "Export a session's attendance sheet",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "scheduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        },
        "/session-attendances/student/{studentAcademicId}/stats": {
            "get": {
                "tags": ["SessionAttendances"],
                "summary": "Attendance statistics for a student",
                "parameters": [
                    {"name": "studentAcademicId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Create notifications for a set of users",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNotificationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/user/{userId}": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List a user's notifications",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/user/{userId}/read-all": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark all of a user's notifications as read",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Marked"}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete a notification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "CreateAcademicClassRequest": {
            "type": "object",
            "properties": {
                "class_code": {"type": "string"},
                "class_name": {"type": "string"},
                "semester": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "completed", "cancelled"]}
            },
            "required": ["class_code", "class_name", "semester"]
        },
        "AssignInstructorsRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "instructor_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["class_id"]
        },
        "CreateTeachingScheduleRequest": {
            "type": "object",
            "properties": {
                "academic_class_id": {"type": "string"},
                "academic_class_instructor_id": {"type": "string"},
                "academic_class_course_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"},
                "meeting_link": {"type": "string"},
                "meeting_id": {"type": "string"},
                "meeting_password": {"type": "string"},
                "is_recurring": {"type": "boolean"},
                "recurring_pattern": {"type": "object"},
                "status": {"type": "string", "enum": ["scheduled", "completed", "cancelled"]},
                "notification_time": {"type": "string", "format": "date-time"}
            },
            "required": ["academic_class_id", "academic_class_instructor_id", "title", "start_time", "end_time"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["scheduled", "completed", "cancelled"]}
            },
            "required": ["status"]
        },
        "AttachRecordingRequest": {
            "type": "object",
            "properties": {
                "recording_url": {"type": "string"}
            },
            "required": ["recording_url"]
        },
        "CreateSessionAttendanceRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {"type": "string"},
                "student_academic_id": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "excused"]},
                "join_time": {"type": "string", "format": "date-time"},
                "leave_time": {"type": "string", "format": "date-time"},
                "notes": {"type": "string"}
            },
            "required": ["schedule_id", "student_academic_id", "status"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {"type": "string"},
                "student_academic_id": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "excused"]}
            },
            "required": ["schedule_id", "student_academic_id", "status"]
        },
        "MarkLeaveRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {"type": "string"},
                "student_academic_id": {"type": "string"}
            },
            "required": ["schedule_id", "student_academic_id"]
        },
        "CreateNotificationRequest": {
            "type": "object",
            "properties": {
                "user_ids": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "type": {"type": "string", "enum": ["course", "assignment", "quiz", "system", "message", "schedule"]},
                "teaching_schedule_id": {"type": "string"},
                "notification_time": {"type": "string", "format": "date-time"},
                "send_email": {"type": "boolean", "default": true}
            },
            "required": ["user_ids", "title", "content", "type"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
