package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type attendanceDoc struct {
	ID              string    `bson:"_id"`
	EmployeeID      string    `bson:"employee_id"`
	Date            string    `bson:"date"`
	CheckInTime     *string   `bson:"check_in_time"`
	CheckOutTime    *string   `bson:"check_out_time"`
	Status          string    `bson:"status"`
	IsHalfDay       bool      `bson:"is_half_day"`
	LateMarks       int       `bson:"late_marks"`
	EarlyLeaveMarks int       `bson:"early_leave_marks"`
	OvertimeMinutes int       `bson:"overtime_minutes"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`

	Employee []employeeDoc `bson:"employee,omitempty"`
}

func (d attendanceDoc) toEntity() attendance.Attendance {
	a := attendance.Attendance{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		Date:            d.Date,
		CheckInTime:     d.CheckInTime,
		CheckOutTime:    d.CheckOutTime,
		Status:          attendance.Status(d.Status),
		IsHalfDay:       d.IsHalfDay,
		LateMarks:       d.LateMarks,
		EarlyLeaveMarks: d.EarlyLeaveMarks,
		OvertimeMinutes: d.OvertimeMinutes,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if len(d.Employee) > 0 {
		name := d.Employee[0].Name
		a.EmployeeName = &name
		a.EmployeeERPID = d.Employee[0].ERPID
	}
	return a
}

type attendanceRepository struct {
	coll *mongo.Collection
}

func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{coll: db.Database.Collection(collAttendance)}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (r *attendanceRepository) findOne(ctx context.Context, filter bson.M) (attendance.Attendance, error) {
	var doc attendanceDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (attendance.Attendance, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID, "date": date})
}

// CheckIn upserts on a filter that only matches a day without a check-in.
// When the day already has one, the upsert collides with the unique
// (employee_id, date) index.
func (r *attendanceRepository) CheckIn(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	now := time.Now().UTC()

	filter := bson.M{"employee_id": record.EmployeeID, "date": record.Date, "check_in_time": nil}
	update := bson.M{
		"$set": bson.M{
			"check_in_time": record.CheckInTime,
			"status":        string(record.Status),
			"is_half_day":   record.IsHalfDay,
			"late_marks":    record.LateMarks,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":               id,
			"check_out_time":    nil,
			"early_leave_marks": 0,
			"overtime_minutes":  0,
			"created_at":        now,
		},
	}

	var doc attendanceDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check in: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *attendanceRepository) CheckOut(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	filter := bson.M{
		"_id":            record.ID,
		"check_in_time":  bson.M{"$ne": nil},
		"check_out_time": nil,
	}
	update := bson.M{"$set": bson.M{
		"check_out_time":    record.CheckOutTime,
		"status":            string(record.Status),
		"is_half_day":       record.IsHalfDay,
		"early_leave_marks": record.EarlyLeaveMarks,
		"overtime_minutes":  record.OvertimeMinutes,
		"updated_at":        time.Now().UTC(),
	}}

	var doc attendanceDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to check out: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *attendanceRepository) UpsertStatus(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	id, err := newID()
	if err != nil {
		return attendance.Attendance{}, err
	}
	now := time.Now().UTC()

	filter := bson.M{"employee_id": record.EmployeeID, "date": record.Date}
	update := bson.M{
		"$set": bson.M{
			"status":      string(record.Status),
			"is_half_day": record.IsHalfDay,
			"updated_at":  now,
		},
		"$setOnInsert": bson.M{
			"_id":               id,
			"check_in_time":     nil,
			"check_out_time":    nil,
			"late_marks":        0,
			"early_leave_marks": 0,
			"overtime_minutes":  0,
			"created_at":        now,
		},
	}

	var doc attendanceDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance status: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *attendanceRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]attendance.Attendance, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	docs, err := decodeAll[attendanceDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toEntity())
	}
	return records, nil
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]attendance.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"employee_id": employeeID}, opts)
}

func (r *attendanceRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to string) ([]attendance.Attendance, error) {
	filter := bson.M{
		"employee_id": employeeID,
		"date":        bson.M{"$gte": from, "$lte": to},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": date}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collEmployees,
			"localField":   "employee_id",
			"foreignField": "_id",
			"as":           "employee",
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "check_in_time", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	docs, err := decodeAll[attendanceDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toEntity())
	}
	return records, nil
}

type summaryDoc struct {
	EmployeeID           string `bson:"_id"`
	Present              int    `bson:"present"`
	Late                 int    `bson:"late"`
	HalfDay              int    `bson:"half_day"`
	Absent               int    `bson:"absent"`
	Off                  int    `bson:"off"`
	EarlyLeave           int    `bson:"early_leave"`
	TotalLateMarks       int    `bson:"total_late_marks"`
	TotalEarlyLeaveMarks int    `bson:"total_early_leave_marks"`
	OvertimeMinutes      int    `bson:"overtime_minutes"`
	Records              int    `bson:"records"`
}

func (d summaryDoc) toSummary() attendance.Summary {
	return attendance.Summary{
		Present:              d.Present,
		Late:                 d.Late,
		HalfDay:              d.HalfDay,
		Absent:               d.Absent,
		Off:                  d.Off,
		EarlyLeave:           d.EarlyLeave,
		TotalLateMarks:       d.TotalLateMarks,
		TotalEarlyLeaveMarks: d.TotalEarlyLeaveMarks,
		OvertimeMinutes:      d.OvertimeMinutes,
		Records:              d.Records,
	}
}

func summaryPipeline(match bson.M) mongo.Pipeline {
	countIf := func(cond any) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{cond, 1, 0}}}
	}
	statusIs := func(s attendance.Status) bson.M {
		return bson.M{"$eq": bson.A{"$status", string(s)}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":                     "$employee_id",
			"present":                 countIf(statusIs(attendance.StatusPresent)),
			"late":                    countIf(statusIs(attendance.StatusLate)),
			"half_day":                countIf(bson.M{"$or": bson.A{statusIs(attendance.StatusHalfDay), "$is_half_day"}}),
			"absent":                  countIf(statusIs(attendance.StatusAbsent)),
			"off":                     countIf(statusIs(attendance.StatusOff)),
			"early_leave":             countIf(bson.M{"$gt": bson.A{"$early_leave_marks", 0}}),
			"total_late_marks":        bson.M{"$sum": "$late_marks"},
			"total_early_leave_marks": bson.M{"$sum": "$early_leave_marks"},
			"overtime_minutes":        bson.M{"$sum": "$overtime_minutes"},
			"records":                 bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (r *attendanceRepository) summarize(ctx context.Context, match bson.M) ([]summaryDoc, error) {
	cur, err := r.coll.Aggregate(ctx, summaryPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attendance: %w", err)
	}
	docs, err := decodeAll[summaryDoc](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attendance summary: %w", err)
	}
	return docs, nil
}

func (r *attendanceRepository) SummarizeByEmployee(ctx context.Context, employeeID string) (attendance.Summary, error) {
	docs, err := r.summarize(ctx, bson.M{"employee_id": employeeID})
	if err != nil {
		return attendance.Summary{}, err
	}
	if len(docs) == 0 {
		return attendance.Summary{}, nil
	}
	return docs[0].toSummary(), nil
}

func (r *attendanceRepository) SummarizeAll(ctx context.Context) ([]attendance.EmployeeSummary, error) {
	docs, err := r.summarize(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	out := make([]attendance.EmployeeSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, attendance.EmployeeSummary{EmployeeID: d.EmployeeID, Summary: d.toSummary()})
	}
	return out, nil
}

func (r *attendanceRepository) CountLate(ctx context.Context, employeeID string, monthPrefix string) (int, error) {
	filter := bson.M{
		"employee_id": employeeID,
		"status":      string(attendance.StatusLate),
		"date":        primitive.Regex{Pattern: "^" + regexp.QuoteMeta(monthPrefix)},
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count late attendance: %w", err)
	}
	return int(n), nil
}

func (r *attendanceRepository) DeleteBefore(ctx context.Context, date string, limit int) (int, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"date": bson.M{"$lt": date}},
		options.Find().
			SetProjection(bson.M{"_id": 1}).
			SetSort(bson.D{{Key: "date", Value: 1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired attendance: %w", err)
	}
	var ids []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &ids); err != nil {
		return 0, fmt.Errorf("failed to decode expired attendance: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	in := make(bson.A, 0, len(ids))
	for _, id := range ids {
		in = append(in, id.ID)
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": in}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired attendance: %w", err)
	}
	return int(res.DeletedCount), nil
}
