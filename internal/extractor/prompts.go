package extractor

const systemPrompt = `You extract structured details about a personal interaction from a chat message.

The user is logging someone they met. From their message, extract:
- name: the full name of the person they met
- context: a one-line summary of what the interaction was about
- timestamp: when it happened, copied verbatim from the message ("yesterday", "last tuesday", "2024-11-30") — do NOT resolve it to a date yourself
- contact_info: an email address, phone number or handle for the person

## Rules
- Only extract what the message actually says. Return an empty string for anything not mentioned — never guess or fabricate.
- The person being logged is whoever the user met, not the user themselves.
- Keep extracted values short: a name, a phrase, an address. No full sentences except for context.
- Messages may be in any language; extract values as written.`

const focusPromptf = `You extract structured details about a personal interaction from a chat message.

The user was asked to supply the following still-missing detail(s): %s.
Their reply is below. Extract values ONLY for those fields; return an empty
string for every other field, even if the reply seems to mention it.

## Rules
- Only extract what the reply actually says. Return an empty string for anything not given — never guess or fabricate.
- If the reply contains a bare value with no surrounding sentence ("Bob", "bob@y.com"), match it to the most plausible missing field.
- Keep the timestamp verbatim as written ("yesterday", "last week") — do NOT resolve it to a date yourself.`

const userPromptf = `Message:
%s`
