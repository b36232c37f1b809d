package mapper

import "strings"

// Kind names a flattened table.
type Kind string

const (
	KindInfo                   Kind = "info"
	KindCampaign               Kind = "campaign"
	KindMessageRecord          Kind = "message_record"
	KindAgentParticipant       Kind = "agent_participant"
	KindAgentParticipantActive Kind = "agent_participant_active"
	KindConsumerParticipant    Kind = "consumer_participant"
	KindTransfer               Kind = "transfer"
	KindInteraction            Kind = "interaction"
	KindMessageScore           Kind = "message_score"
	KindMessageStatus          Kind = "message_status"
	KindSurvey                 Kind = "survey"
	KindCoBrowseSession        Kind = "cobrowse_session"
	KindSummary                Kind = "summary"
	KindCustomerInfo           Kind = "customer_info"
	KindPersonalInfo           Kind = "personal_info"
)

// ParentColumn is present on every row and holds the conversation id.
const ParentColumn = "conversation_id"

// Field maps one column to a dotted source path. When several paths are
// given the first one present wins. Element fields are read from the
// members of the schema's Explode list instead of the event itself.
type Field struct {
	Column  string
	Paths   [][]string
	Element bool
}

func field(column string, paths ...string) Field {
	f := Field{Column: column}
	for _, p := range paths {
		f.Paths = append(f.Paths, strings.Split(p, "."))
	}
	return f
}

func elem(column string, paths ...string) Field {
	f := field(column, paths...)
	f.Element = true
	return f
}

// Schema describes how one event item becomes rows. Without Explode an item
// yields exactly one row; with Explode it yields one row per list member, or
// a single row with null element fields when the list is absent or empty.
type Schema struct {
	Kind    Kind
	Fields  []Field
	Explode []string
}

// Columns returns the column names in table order.
func (s *Schema) Columns() []string {
	cols := make([]string, 0, len(s.Fields)+1)
	cols = append(cols, ParentColumn)
	for _, f := range s.Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

var infoSchema = &Schema{Kind: KindInfo, Fields: []Field{
	field("agent_deleted", "agentDeleted"),
	field("alerted_mcs", "alertedMCS"),
	field("brand_id", "brandId"),
	field("browser", "browser"),
	field("close_reason", "closeReason"),
	field("close_reason_description", "closeReasonDescription"),
	field("csat", "csat"),
	field("csat_rate", "csatRate"),
	field("device", "device"),
	field("duration", "duration"),
	field("end_time", "endTime"),
	field("end_time_l", "endTimeL"),
	field("first_conversation", "firstConversation"),
	field("is_partial", "isPartial"),
	field("latest_agent_full_name", "latestAgentFullName"),
	field("latest_agent_group_id", "latestAgentGroupId"),
	field("latest_agent_group_name", "latestAgentGroupName"),
	field("latest_agent_id", "latestAgentId"),
	field("latest_agent_login_name", "latestAgentLoginName"),
	field("latest_agent_nickname", "latestAgentNickname"),
	field("latest_queue_state", "latestQueueState"),
	field("latest_skill_id", "latestSkillId"),
	field("latest_skill_name", "latestSkillName"),
	field("mcs", "mcs"),
	field("operating_system", "operatingSystem"),
	field("source", "source"),
	field("start_time", "startTime"),
	field("start_time_l", "startTimeL"),
	field("status", "status"),
}}

var campaignSchema = &Schema{Kind: KindCampaign, Fields: []Field{
	field("behavior_system_default", "behaviorSystemDefault"),
	field("campaign_engagement_id", "campaignEngagementId"),
	field("campaign_engagement_name", "campaignEngagementName"),
	field("campaign_id", "campaignId"),
	field("campaign_name", "campaignName"),
	field("engagement_agent_note", "engagementAgentNote"),
	field("engagement_application_id", "engagementApplicationId"),
	field("engagement_application_name", "engagementApplicationName"),
	field("engagement_application_type_id", "engagementApplicationTypeId"),
	field("engagement_application_type_name", "engagementApplicationTypeName"),
	field("engagement_source", "engagementSource"),
	field("goal_id", "goalId"),
	field("goal_name", "goalName"),
	field("lob_id", "lobId"),
	field("lob_name", "lobName"),
	field("location_id", "LocationId", "locationId"),
	field("location_name", "LocationName", "locationName"),
	field("profile_system_default", "profileSystemDefault"),
	field("visitor_behavior_id", "visitorBehaviorId"),
	field("visitor_behavior_name", "visitorBehaviorName"),
	field("visitor_profile_id", "visitorProfileId"),
	field("visitor_profile_name", "visitorProfileName"),
}}

var messageRecordSchema = &Schema{Kind: KindMessageRecord, Fields: []Field{
	field("context_data", "contextData"),
	field("device", "device"),
	field("dialog_id", "dialogId"),
	field("message_data", "messageData.msg.text"),
	field("message_id", "messageId"),
	field("participant_id", "participantId"),
	field("sent_by", "sentBy"),
	field("seq", "seq"),
	field("source", "source"),
	field("time", "time"),
	field("time_l", "timeL"),
	field("type", "type"),
}}

var agentParticipantFields = []Field{
	field("agent_deleted", "agentDeleted"),
	field("agent_full_name", "agentFullName"),
	field("agent_group_id", "agentGroupId"),
	field("agent_group_name", "agentGroupName"),
	field("agent_id", "agentId"),
	field("agent_login_name", "agentLoginName"),
	field("agent_nickname", "agentNickname"),
	field("agent_pid", "agentPid"),
	field("permission", "permission"),
	field("role", "role"),
	field("time", "time"),
	field("time_l", "timeL"),
	field("user_type", "userType"),
	field("user_type_name", "userTypeName"),
}

var agentParticipantSchema = &Schema{Kind: KindAgentParticipant, Fields: agentParticipantFields}

var agentParticipantActiveSchema = &Schema{Kind: KindAgentParticipantActive, Fields: agentParticipantFields}

var consumerParticipantSchema = &Schema{Kind: KindConsumerParticipant, Fields: []Field{
	field("avatar_url", "avatarURL"),
	field("consumer_name", "consumerName"),
	field("email", "email"),
	field("first_name", "firstName"),
	field("last_name", "lastName"),
	field("participant_id", "participantId"),
	field("phone", "phone"),
	field("time", "time"),
	field("time_l", "timeL"),
	field("token", "token"),
}}

var transferSchema = &Schema{Kind: KindTransfer, Fields: []Field{
	field("assigned_agent_full_name", "assignedAgentFullName"),
	field("assigned_agent_id", "assignedAgentId"),
	field("assigned_agent_login_name", "assignedAgentLoginName"),
	field("assigned_agent_nickname", "assignedAgentNickname"),
	field("by", "by"),
	field("context_data", "contextData"),
	field("reason", "reason"),
	field("source_agent_full_name", "sourceAgentFullName"),
	field("source_agent_id", "sourceAgentId"),
	field("source_agent_login_name", "sourceAgentLoginName"),
	field("source_agent_nickname", "sourceAgentNickname"),
	field("source_skill_id", "sourceSkillId"),
	field("source_skill_name", "sourceSkillName"),
	field("target_skill_id", "targetSkillId"),
	field("target_skill_name", "targetSkillName"),
	field("time", "time"),
	field("time_l", "timeL"),
}}

var interactionSchema = &Schema{Kind: KindInteraction, Fields: []Field{
	field("assigned_agent_id", "assignedAgentId"),
	field("assigned_agent_login_name", "assignedAgentLoginName", "agentLoginName"),
	field("assigned_agent_nickname", "assignedAgentNickname", "agentNickname"),
	field("assigned_agent_full_name", "assignedAgentFullName", "agentFullName"),
	field("interaction_time", "interactionTime"),
	field("interaction_time_l", "interactionTimeL"),
	field("interactive_sequence", "interactiveSequence"),
}}

var messageScoreSchema = &Schema{Kind: KindMessageScore, Fields: []Field{
	field("mcs", "mcs"),
	field("message_id", "messageId"),
	field("message_raw_score", "messageRawScore"),
	field("time", "time"),
	field("time_l", "timeL"),
}}

var messageStatusSchema = &Schema{Kind: KindMessageStatus, Fields: []Field{
	field("message_delivery_status", "messageDeliveryStatus"),
	field("message_id", "messageId"),
	field("participant_id", "participantId"),
	field("participant_type", "participantType"),
	field("seq", "seq"),
	field("time", "time"),
	field("time_l", "timeL"),
}}

var surveySchema = &Schema{Kind: KindSurvey, Explode: []string{"surveyData"}, Fields: []Field{
	elem("survey_answer", "answer"),
	elem("survey_question", "question"),
	field("survey_status", "surveyStatus"),
	field("survey_type", "surveyType"),
}}

var coBrowseSessionSchema = &Schema{Kind: KindCoBrowseSession, Fields: []Field{
	field("agent_id", "agentId"),
	field("capabilities", "capabilities"),
	field("duration", "duration"),
	field("end_reason", "endReason"),
	field("end_time", "endTime"),
	field("end_time_l", "endTimeL"),
	field("interactive_time", "interactiveTime"),
	field("interactive_time_l", "interactiveTimeL"),
	field("is_interactive", "isInteractive"),
	field("session_id", "sessionId"),
	field("start_time", "startTime"),
	field("start_time_l", "startTimeL"),
	field("type", "type"),
}}

var summarySchema = &Schema{Kind: KindSummary, Fields: []Field{
	field("last_updated_time", "lastUpdatedTime"),
	field("text", "text"),
}}

// customerInfoSchema and personalInfoSchema read whole sdes events.
var customerInfoSchema = &Schema{Kind: KindCustomerInfo, Fields: []Field{
	field("account_name", "customerInfo.customerInfo.accountName"),
	field("balance", "customerInfo.customerInfo.balance"),
	field("company_branch", "customerInfo.customerInfo.companyBranch"),
	field("company_size", "customerInfo.customerInfo.companySize"),
	field("customer_id", "customerInfo.customerInfo.customerId"),
	field("customer_info_server_time_stamp", "customerInfo.serverTimeStamp"),
	field("customer_status", "customerInfo.customerInfo.customerStatus"),
	field("customer_type", "customerInfo.customerInfo.customerType"),
	field("imei", "customerInfo.customerInfo.imei"),
	field("last_payment_day", "customerInfo.customerInfo.lastPaymentDate.day"),
	field("last_payment_month", "customerInfo.customerInfo.lastPaymentDate.month"),
	field("last_payment_year", "customerInfo.customerInfo.lastPaymentDate.year"),
	field("login_status", "customerInfo.customerInfo.loginStatus"),
	field("registration_day", "customerInfo.customerInfo.registrationDate.day"),
	field("registration_month", "customerInfo.customerInfo.registrationDate.month"),
	field("registration_year", "customerInfo.customerInfo.registrationDate.year"),
	field("role", "customerInfo.customerInfo.role"),
	field("sde_server_time_stamp", "serverTimeStamp"),
	field("sde_type", "sdeType"),
	field("social_id", "customerInfo.customerInfo.socialId"),
	field("store_number", "customerInfo.customerInfo.storeNumber"),
	field("store_zip_code", "customerInfo.customerInfo.storeZipCode"),
	field("user_name", "customerInfo.customerInfo.userName"),
}}

var personalInfoSchema = &Schema{Kind: KindPersonalInfo, Explode: []string{"personalInfo", "personalInfo", "contacts"}, Fields: []Field{
	field("company", "personalInfo.personalInfo.company"),
	field("customer_age", "personalInfo.personalInfo.customerAge"),
	elem("email", "personalContact.email"),
	field("gender", "personalInfo.personalInfo.gender"),
	field("language", "personalInfo.personalInfo.language"),
	field("name", "personalInfo.personalInfo.name"),
	field("personal_info_server_time_stamp", "personalInfo.serverTimeStamp"),
	elem("phone", "personalContact.phone"),
	field("sde_server_time_stamp", "serverTimeStamp"),
	field("sde_type", "sdeType"),
	field("surname", "personalInfo.personalInfo.surname"),
}}

// Schemas lists every table kind in output order.
var Schemas = []*Schema{
	infoSchema,
	campaignSchema,
	messageRecordSchema,
	agentParticipantSchema,
	agentParticipantActiveSchema,
	consumerParticipantSchema,
	transferSchema,
	interactionSchema,
	messageScoreSchema,
	messageStatusSchema,
	surveySchema,
	coBrowseSessionSchema,
	summarySchema,
	customerInfoSchema,
	personalInfoSchema,
}

// SchemaFor returns the schema of kind, or nil.
func SchemaFor(kind Kind) *Schema {
	for _, s := range Schemas {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// event describes a top-level record key. Single events hold one object;
// the rest hold a list of objects.
type event struct {
	schema *Schema
	single bool
}

var events = map[string]event{
	"info":                    {schema: infoSchema, single: true},
	"campaign":                {schema: campaignSchema, single: true},
	"messageRecords":          {schema: messageRecordSchema},
	"agentParticipants":       {schema: agentParticipantSchema},
	"agentParticipantsActive": {schema: agentParticipantActiveSchema},
	"consumerParticipants":    {schema: consumerParticipantSchema},
	"transfers":               {schema: transferSchema},
	"interactions":            {schema: interactionSchema},
	"messageScores":           {schema: messageScoreSchema},
	"messageStatuses":         {schema: messageStatusSchema},
	"conversationSurveys":     {schema: surveySchema},
	"coBrowseSessions":        {schema: coBrowseSessionSchema},
	"summary":                 {schema: summarySchema, single: true},
}
