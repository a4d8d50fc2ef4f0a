package main

import (
	"context"
	"fmt"
	"interviewsim/internal/model"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// demoInterview builds the seed interview. IDs stay empty so Mongo assigns
// ObjectIDs, matching what the repositories query by
func demoInterview(interviewerID string, now time.Time) *model.Interview {
	return &model.Interview{
		CandidateID:    interviewerID,
		JobTitle:       "Backend Engineer",
		JobDescription: "Design and operate Go services backed by MongoDB and Redis.",
		Skills:         "Go, MongoDB, Redis, REST APIs",
		Difficulty:     model.DifficultyIntermediate,
		Status:         model.InterviewInProgress,
		QuestionsReady: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func demoQuestions(interviewID string, now time.Time) []interface{} {
	questions := []struct {
		text  string
		qtype model.QuestionType
	}{
		{"Tell me about yourself and your background.", model.QuestionTypeBasic},
		{"What interests you about this Backend Engineer role?", model.QuestionTypeBasic},
		{"Walk me through how you would design a rate limiter for a public API.", model.QuestionTypeTechnical},
		{"How do you decide between embedding and referencing documents in MongoDB?", model.QuestionTypeTechnical},
		{"Describe a time you debugged a production incident under pressure.", model.QuestionTypeBehavioral},
		{"Your service's Redis cache goes down during peak traffic. What do you do?", model.QuestionTypeSituational},
	}

	docs := make([]interface{}, 0, len(questions))
	for i, q := range questions {
		docs = append(docs, model.Question{
			InterviewID: interviewID,
			Text:        q.text,
			Type:        q.qtype,
			Order:       i,
			CreatedAt:   now,
		})
	}
	return docs
}

func demoLink(createdByID string, now time.Time) *model.ShareLink {
	return &model.ShareLink{
		Token:       strings.ReplaceAll(uuid.New().String(), "-", ""),
		CreatedByID: createdByID,
		Role:        "Backend Engineer",
		Description: "Design and operate Go services backed by MongoDB and Redis.",
		Experience:  "3-5 years",
		Difficulty:  model.DifficultyIntermediate,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("interviewsim")
	interviewColl := db.Collection("interviews")
	questionColl := db.Collection("questions")
	linkColl := db.Collection("share_links")

	// Interviewer ID observed in logs
	interviewerID := "ivr_8263b93c"
	now := time.Now()

	interview := demoInterview(interviewerID, now)
	res, err := interviewColl.InsertOne(ctx, interview)
	if err != nil {
		log.Fatalf("Failed to insert interview: %v", err)
	}
	interview.ID = res.InsertedID.(primitive.ObjectID).Hex()

	docs := demoQuestions(interview.ID, now)
	if _, err := questionColl.InsertMany(ctx, docs); err != nil {
		log.Fatalf("Failed to insert questions: %v", err)
	}

	link := demoLink(interviewerID, now)
	if _, err := linkColl.InsertOne(ctx, link); err != nil {
		log.Fatalf("Failed to insert share link: %v", err)
	}

	fmt.Printf("Seeded interview %s with %d questions\n", interview.ID, len(docs))
	fmt.Printf("Public link token: %s\n", link.Token)
}
